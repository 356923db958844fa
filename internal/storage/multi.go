package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/mselser95/triarb-tracker/internal/arbitrage"
)

// MultiStorage delivers each opportunity to every sink, even when one fails.
type MultiStorage struct {
	sinks []arbitrage.Storage
}

// NewMultiStorage creates a fan-out storage.
func NewMultiStorage(sinks ...arbitrage.Storage) *MultiStorage {
	return &MultiStorage{sinks: sinks}
}

// StoreOpportunity delivers to every sink and joins the failures.
func (m *MultiStorage) StoreOpportunity(ctx context.Context, opp *arbitrage.Opportunity) error {
	var errs []error
	for i, sink := range m.sinks {
		err := sink.StoreOpportunity(ctx, opp)
		if err != nil {
			errs = append(errs, fmt.Errorf("sink %d: %w", i, err))
		}
	}
	return errors.Join(errs...)
}

// Close closes every sink.
func (m *MultiStorage) Close() error {
	var errs []error
	for _, sink := range m.sinks {
		err := sink.Close()
		if err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Len returns the number of sinks.
func (m *MultiStorage) Len() int {
	return len(m.sinks)
}
