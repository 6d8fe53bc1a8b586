// Package model contains the wire representation of the data exchanged with
// the orchestrator.
//
// Task instances, task outcomes and task definitions live in the `task`
// sub-package; they are plain JSON-tagged structs so that the gateway can
// encode them without any extra mapping layer.
package model
