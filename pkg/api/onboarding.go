package api

import (
	"context"
	"fmt"
	"net/url"

	"github.com/goliatone/go-stepform/pkg/field"
)

// OnboardingService wraps the user, address, spouse, return and dependent
// endpoints the onboarding flows read from and write to.
type OnboardingService struct {
	client *Client
}

// NewOnboardingService binds the service to client.
func NewOnboardingService(client *Client) *OnboardingService {
	return &OnboardingService{client: client}
}

func userPath(id string) string { return fmt.Sprintf("/api/users/%s/", url.PathEscape(id)) }

func returnPath(id string) string {
	if id == "" {
		return "/api/returns/"
	}
	return fmt.Sprintf("/api/returns/%s/", url.PathEscape(id))
}

func addressPath(id string) string {
	if id == "" {
		return "/api/address/"
	}
	return fmt.Sprintf("/api/address/%s/", url.PathEscape(id))
}

func spousePath(id string) string { return fmt.Sprintf("/api/spouse/%s/", url.PathEscape(id)) }

func dependentsPath(year string) string {
	return fmt.Sprintf("/api/returns/%s/dependents/", url.PathEscape(year))
}

// User fetches the user record.
func (s *OnboardingService) User(ctx context.Context, id string) (field.Values, error) {
	var out field.Values
	if err := s.client.Get(ctx, userPath(id), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateUser patches the user record.
func (s *OnboardingService) UpdateUser(ctx context.Context, id string, values field.Values) error {
	return s.client.Patch(ctx, userPath(id), values.Form(), nil)
}

// Address fetches the address record. An empty id addresses the collection
// root, which the backend resolves to the current user's address.
func (s *OnboardingService) Address(ctx context.Context, id string) (field.Values, error) {
	var out field.Values
	if err := s.client.Get(ctx, addressPath(id), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// SaveAddress patches an existing address or creates one when id is empty.
func (s *OnboardingService) SaveAddress(ctx context.Context, id string, values field.Values) error {
	if id == "" {
		return s.client.Post(ctx, addressPath(""), values.Form(), nil)
	}
	return s.client.Patch(ctx, addressPath(id), values.Form(), nil)
}

// Spouse fetches the spouse record.
func (s *OnboardingService) Spouse(ctx context.Context, id string) (field.Values, error) {
	var out field.Values
	if err := s.client.Get(ctx, spousePath(id), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateSpouse patches the spouse record.
func (s *OnboardingService) UpdateSpouse(ctx context.Context, id string, values field.Values) error {
	return s.client.Patch(ctx, spousePath(id), values.Form(), nil)
}

// CreateReturn creates a tax return from the filing status answers.
func (s *OnboardingService) CreateReturn(ctx context.Context, values field.Values) error {
	return s.client.Post(ctx, returnPath(""), values.Form(), nil)
}

// Return fetches a tax return.
func (s *OnboardingService) Return(ctx context.Context, id string) (field.Values, error) {
	var out field.Values
	if err := s.client.Get(ctx, returnPath(id), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateReturn patches a tax return.
func (s *OnboardingService) UpdateReturn(ctx context.Context, id string, values field.Values) error {
	return s.client.Patch(ctx, returnPath(id), values.Form(), nil)
}

// Dependents lists the dependents declared on the return for year.
func (s *OnboardingService) Dependents(ctx context.Context, year string) ([]field.Values, error) {
	var out []field.Values
	if err := s.client.Get(ctx, dependentsPath(year), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// AddDependent attaches a dependent to the return for year.
func (s *OnboardingService) AddDependent(ctx context.Context, year string, values field.Values) error {
	return s.client.Post(ctx, dependentsPath(year), values.Form(), nil)
}
