// Package secret loads orchestrator credentials and the registration token
// from scy-encrypted resources.
package secret

import (
	"context"
	"fmt"
	"reflect"

	"github.com/viant/scy"
	"github.com/viant/scy/cred"
	_ "github.com/viant/scy/kms/blowfish"
)

// Service provides secret management operations using viant/scy
type Service struct {
	scyService *scy.Service
}

// Basic loads a basic credential stored at URL, encrypted with key
// (e.g. blowfish://default).
func (s *Service) Basic(ctx context.Context, URL, key string) (*cred.Basic, error) {
	resource := scy.NewResource(reflect.TypeOf(cred.Basic{}), URL, key)
	secret, err := s.scyService.Load(ctx, resource)
	if err != nil {
		return nil, fmt.Errorf("failed to load secret from %s: %w", URL, err)
	}
	basic, ok := secret.Target.(*cred.Basic)
	if !ok {
		return nil, fmt.Errorf("secret %s: expected basic credential, but had %T", URL, secret.Target)
	}
	return basic, nil
}

// Token loads a raw secret such as the capability registration token.
func (s *Service) Token(ctx context.Context, URL, key string) (string, error) {
	resource := scy.NewResource(nil, URL, key)
	secret, err := s.scyService.Load(ctx, resource)
	if err != nil {
		return "", fmt.Errorf("failed to load secret from %s: %w", URL, err)
	}
	return secret.String(), nil
}

// StoreBasic encrypts and stores a basic credential at URL.
func (s *Service) StoreBasic(ctx context.Context, basic *cred.Basic, URL, key string) error {
	resource := scy.NewResource(reflect.TypeOf(cred.Basic{}), URL, key)
	if err := s.scyService.Store(ctx, scy.NewSecret(basic, resource)); err != nil {
		return fmt.Errorf("failed to store secret at %s: %w", URL, err)
	}
	return nil
}

// StoreToken encrypts and stores a raw secret at URL.
func (s *Service) StoreToken(ctx context.Context, token, URL, key string) error {
	resource := scy.NewResource(nil, URL, key)
	if err := s.scyService.Store(ctx, scy.NewSecret(token, resource)); err != nil {
		return fmt.Errorf("failed to store secret at %s: %w", URL, err)
	}
	return nil
}

// New creates a new secret service
func New() *Service {
	return &Service{scyService: scy.New()}
}
