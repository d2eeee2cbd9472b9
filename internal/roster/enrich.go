// Copyright (c) 2026 Courtside. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package roster

import (
	"context"
	"log/slog"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/sync/errgroup"

	"github.com/taibuivan/courtside/internal/identity"
	"github.com/taibuivan/courtside/internal/platform/ctxutil"
	"github.com/taibuivan/courtside/internal/platform/metrics"
)

// PersonLookup resolves a person by external id. *identity.Client satisfies it.
type PersonLookup interface {
	Search(ctx context.Context, externalID string) (identity.Person, error)
}

// EnricherConfig tunes an [Enricher].
type EnricherConfig struct {
	CacheSize   int
	CacheTTL    time.Duration
	Concurrency int
}

// Enricher fills coach and student rows that lack dni or email with the
// linked person's details.
type Enricher struct {
	lookup      PersonLookup
	cache       *expirable.LRU[string, identity.Person]
	concurrency int
	metrics     *metrics.Metrics
}

// NewEnricher creates an [Enricher].
func NewEnricher(lookup PersonLookup, config EnricherConfig, m *metrics.Metrics) *Enricher {
	if config.CacheSize <= 0 {
		config.CacheSize = 512
	}
	if config.CacheTTL <= 0 {
		config.CacheTTL = 5 * time.Minute
	}
	if config.Concurrency <= 0 {
		config.Concurrency = 8
	}
	return &Enricher{
		lookup:      lookup,
		cache:       expirable.NewLRU[string, identity.Person](config.CacheSize, nil, config.CacheTTL),
		concurrency: config.Concurrency,
		metrics:     m,
	}
}

/*
Enrich decorates rows in place and returns them.

Every row gets the person fields defaulted to "". Rows that already carry
both dni and email are left alone; the rest are looked up by
"persona_external". A failed lookup is logged and the row is returned
undecorated. Enrich never fails.
*/
func (e *Enricher) Enrich(ctx context.Context, rows []Record) []Record {
	logger := ctxutil.GetLogger(ctx)

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(e.concurrency)

	for _, row := range rows {
		for _, key := range personKeys {
			row.setDefault(key, "")
		}
		if row.String("dni") != "" && row.String("email") != "" {
			continue
		}

		externalID := row.String("persona_external")
		if externalID == "" {
			continue
		}

		group.Go(func() error {
			person, err := e.resolve(groupCtx, externalID)
			if err != nil {
				logger.Warn("person_enrichment_failed",
					slog.String("external_id", externalID),
					slog.Any("error", err),
				)
				return nil
			}
			applyPerson(row, person)
			return nil
		})
	}

	_ = group.Wait()
	return rows
}

// EnrichOne decorates a single row.
func (e *Enricher) EnrichOne(ctx context.Context, row Record) Record {
	if row == nil {
		return row
	}
	e.Enrich(ctx, []Record{row})
	return row
}

func (e *Enricher) resolve(ctx context.Context, externalID string) (identity.Person, error) {
	if person, ok := e.cache.Get(externalID); ok {
		e.metrics.PersonCache(true)
		return person, nil
	}
	e.metrics.PersonCache(false)

	person, err := e.lookup.Search(ctx, externalID)
	if err != nil {
		return identity.Person{}, err
	}
	e.cache.Add(externalID, person)
	return person, nil
}

// Forget drops a cached person, e.g. after an edit.
func (e *Enricher) Forget(externalID string) {
	e.cache.Remove(externalID)
}

// personKeys are the row fields an enrichment fills.
var personKeys = []string{"nombre", "apellido", "dni", "email", "telefono", "direccion"}

func applyPerson(row Record, person identity.Person) {
	row["nombre"] = person.FirstName
	row["apellido"] = person.LastName
	row["dni"] = person.Identification
	row["email"] = person.Email
	row["telefono"] = person.Phone
	row["direccion"] = person.Address
}
