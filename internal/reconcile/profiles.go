// Copyright (c) 2026 Courtside. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package reconcile

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/taibuivan/courtside/internal/gateway"
)

// Primary-service collections a saga creates profiles in.
const (
	coachesPath  = "entrenadores"
	studentsPath = "estudiantes-vinculacion"
)

// PrimaryProfiles creates profiles through the primary-service gateway.
type PrimaryProfiles struct {
	client *gateway.Client
}

// NewPrimaryProfiles creates a [PrimaryProfiles].
func NewPrimaryProfiles(client *gateway.Client) *PrimaryProfiles {
	return &PrimaryProfiles{client: client}
}

// Create posts body to the collection for kind under creds.
func (p *PrimaryProfiles) Create(ctx context.Context, creds gateway.Credentials, kind Kind, body map[string]any) (json.RawMessage, error) {
	var path string
	switch kind {
	case KindCoach:
		path = coachesPath
	case KindStudent:
		path = studentsPath
	default:
		return nil, fmt.Errorf("reconcile_unknown_profile_kind: %q", kind)
	}

	var created json.RawMessage
	if err := p.client.Bind(creds).Post(ctx, path, body, &created); err != nil {
		return nil, err
	}
	return created, nil
}
