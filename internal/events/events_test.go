package events

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type capturingPublisher struct {
	subjects []string
	payloads []any
	err      error
}

func (p *capturingPublisher) Publish(_ context.Context, subject string, payload any) error {
	p.subjects = append(p.subjects, subject)
	p.payloads = append(p.payloads, payload)
	return p.err
}

func (p *capturingPublisher) Close() {}

func TestEmit(t *testing.T) {
	pub := &capturingPublisher{}
	Emit(context.Background(), pub, zap.NewNop(), SubjectLedgerPosted, LedgerPosted{EntryNumber: "JE-2025-000001"})

	assert.Equal(t, []string{SubjectLedgerPosted}, pub.subjects)
	assert.Equal(t, "JE-2025-000001", pub.payloads[0].(LedgerPosted).EntryNumber)
}

func TestEmit_SwallowsPublishFailure(t *testing.T) {
	pub := &capturingPublisher{err: fmt.Errorf("bus down")}
	assert.NotPanics(t, func() {
		Emit(context.Background(), pub, zap.NewNop(), SubjectPeriodClosed, PeriodClosed{PeriodNumber: 3})
	})
}

func TestEmit_NilPublisher(t *testing.T) {
	assert.NotPanics(t, func() {
		Emit(context.Background(), nil, zap.NewNop(), SubjectAccountCreated, AccountCreated{})
	})
}
