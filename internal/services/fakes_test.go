package services

import (
	"context"
	"errors"
	"sync"

	"github.com/rafaelalberola/lamiradacreativa/internal/config"
)

// callLog records the order collaborators were invoked in.
type callLog struct {
	mu    sync.Mutex
	calls []string
}

func (l *callLog) add(name string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls = append(l.calls, name)
}

func (l *callLog) all() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.calls...)
}

type fakeTracker struct {
	log    *callLog
	events []TrackEvent
	panics bool
}

func (f *fakeTracker) Track(_ context.Context, ev TrackEvent) TrackResult {
	f.log.add("track")
	f.events = append(f.events, ev)
	if f.panics {
		panic("tracker exploded")
	}
	return TrackResult{"fake": Failed(errors.New("collector down"))}
}

type fakeIdentity struct {
	log       *callLog
	err       error
	result    *UpsertResult
	gotEmail  string
	gotName   string
	gotCustID string
}

func (f *fakeIdentity) Upsert(_ context.Context, email, name, customerID string) (*UpsertResult, error) {
	f.log.add("upsert")
	f.gotEmail, f.gotName, f.gotCustID = email, name, customerID
	if f.err != nil {
		return nil, f.err
	}
	if f.result != nil {
		return f.result, nil
	}
	return &UpsertResult{Created: true, Email: email, UserID: "email|new"}, nil
}

func (f *fakeIdentity) CheckUser(context.Context, string) (*UserStatus, error) {
	f.log.add("check")
	return &UserStatus{}, nil
}

type fakeNotifier struct {
	log    *callLog
	result Result
}

func (f *fakeNotifier) SendPurchaseConfirmation(context.Context, string, string) Result {
	f.log.add("notify")
	return f.result
}

func webhookConfig() *config.Config {
	return config.FromLookup(func(key string) (string, bool) {
		v, ok := map[string]string{
			"STRIPE_WEBHOOK_SECRET":   testSecret,
			"AUTH0_DOMAIN":            "tenant.eu.auth0.com",
			"AUTH0_M2M_CLIENT_ID":     "client",
			"AUTH0_M2M_CLIENT_SECRET": "secret",
		}[key]
		return v, ok
	})
}
