// Package dao defines the generic storage contract shared by the in-flight
// task table and its optional journal.
package dao
