package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/kursadbilgin/reminder-relay/internal/domain"
	"github.com/kursadbilgin/reminder-relay/internal/observability"
	"github.com/kursadbilgin/reminder-relay/internal/provider"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type stubProvider struct {
	kind    domain.Kind
	readyFn func() error
	sendFn  func(ctx context.Context, intent domain.Intent) provider.Result
	calls   atomic.Int32
}

func (p *stubProvider) Kind() domain.Kind { return p.kind }

func (p *stubProvider) Ready() error {
	if p.readyFn != nil {
		return p.readyFn()
	}
	return nil
}

func (p *stubProvider) Send(ctx context.Context, intent domain.Intent) provider.Result {
	p.calls.Add(1)
	if p.sendFn != nil {
		return p.sendFn(ctx, intent)
	}
	return provider.Success([]byte(`{"ok":true}`), "")
}

func newTestDispatcher(t *testing.T, providers ...provider.Provider) *Dispatcher {
	t.Helper()

	d, err := NewDispatcher(providers, time.Second, zap.NewNop())
	if err != nil {
		t.Fatalf("NewDispatcher() error = %v", err)
	}
	d.SetMetrics(observability.NewMetrics())
	return d
}

func TestNewDispatcherRejectsInvalidRegistry(t *testing.T) {
	t.Parallel()

	chat := &stubProvider{kind: domain.KindChatReminder}

	if _, err := NewDispatcher([]provider.Provider{chat, &stubProvider{kind: domain.KindChatReminder}}, 0, nil); err == nil {
		t.Fatal("expected error for duplicate kind")
	}
	if _, err := NewDispatcher([]provider.Provider{nil}, 0, nil); err == nil {
		t.Fatal("expected error for nil provider")
	}
	if _, err := NewDispatcher([]provider.Provider{&stubProvider{kind: "PUSH"}}, 0, nil); err == nil {
		t.Fatal("expected error for invalid kind")
	}
}

func TestDispatchRoutesByKind(t *testing.T) {
	t.Parallel()

	chat := &stubProvider{kind: domain.KindChatReminder}
	email := &stubProvider{
		kind: domain.KindEmailReminder,
		sendFn: func(ctx context.Context, intent domain.Intent) provider.Result {
			return provider.Success(nil, "sent")
		},
	}
	d := newTestDispatcher(t, chat, email)

	result := d.Dispatch(context.Background(), domain.NewIntent(domain.KindEmailReminder, "ana@example.com", nil))
	if !result.OK || result.Message != "sent" {
		t.Fatalf("result = %+v, want email provider result", result)
	}
	if chat.calls.Load() != 0 || email.calls.Load() != 1 {
		t.Fatalf("calls chat=%d email=%d, want 0/1", chat.calls.Load(), email.calls.Load())
	}
}

func TestDispatchMissingRecipientSkipsProvider(t *testing.T) {
	t.Parallel()

	chat := &stubProvider{kind: domain.KindChatReminder}
	d := newTestDispatcher(t, chat)

	result := d.Dispatch(context.Background(), domain.NewIntent(domain.KindChatReminder, "", nil))
	if result.OK {
		t.Fatal("expected failure")
	}
	if !errors.Is(result.Err, domain.ErrMissingRecipient) {
		t.Fatalf("Err = %v, want ErrMissingRecipient", result.Err)
	}
	if chat.calls.Load() != 0 {
		t.Fatalf("provider calls = %d, want 0", chat.calls.Load())
	}
}

func TestDispatchNotConfiguredSkipsProvider(t *testing.T) {
	t.Parallel()

	chat := &stubProvider{
		kind: domain.KindChatReminder,
		readyFn: func() error {
			return domain.ErrNotConfigured
		},
	}
	d := newTestDispatcher(t, chat)

	result := d.Dispatch(context.Background(), domain.NewIntent(domain.KindChatReminder, "123", nil))
	if !errors.Is(result.Err, domain.ErrNotConfigured) {
		t.Fatalf("Err = %v, want ErrNotConfigured", result.Err)
	}
	if chat.calls.Load() != 0 {
		t.Fatalf("provider calls = %d, want 0", chat.calls.Load())
	}

	unregistered := d.Dispatch(context.Background(), domain.NewIntent(domain.KindEmailReminder, "ana@example.com", nil))
	if !errors.Is(unregistered.Err, domain.ErrNotConfigured) {
		t.Fatalf("unregistered Err = %v, want ErrNotConfigured", unregistered.Err)
	}
}

func TestDispatchPassesProviderFailureThrough(t *testing.T) {
	t.Parallel()

	providerErr := &provider.ProviderError{Kind: domain.ErrProvider, StatusCode: 400, Message: "Telegram API error"}
	chat := &stubProvider{
		kind: domain.KindChatReminder,
		sendFn: func(ctx context.Context, intent domain.Intent) provider.Result {
			return provider.Failure(providerErr, []byte(`{"ok":false}`))
		},
	}
	d := newTestDispatcher(t, chat)

	result := d.Dispatch(context.Background(), domain.NewIntent(domain.KindChatReminder, "123", nil))
	if result.OK {
		t.Fatal("expected failure")
	}

	var got *provider.ProviderError
	if !errors.As(result.Err, &got) || got != providerErr {
		t.Fatalf("Err = %v, want provider error passed through", result.Err)
	}
	if !json.Valid(result.Data) {
		t.Fatalf("Data = %s, want raw payload", result.Data)
	}
}

func TestDispatchRecoversProviderPanic(t *testing.T) {
	t.Parallel()

	chat := &stubProvider{
		kind: domain.KindChatReminder,
		sendFn: func(ctx context.Context, intent domain.Intent) provider.Result {
			panic("boom")
		},
	}
	d := newTestDispatcher(t, chat)

	result := d.Dispatch(context.Background(), domain.NewIntent(domain.KindChatReminder, "123", nil))
	if result.OK || !errors.Is(result.Err, domain.ErrProvider) {
		t.Fatalf("result = %+v, want ErrProvider failure", result)
	}
}

func TestDispatchNormalizesEmptyFailure(t *testing.T) {
	t.Parallel()

	chat := &stubProvider{
		kind: domain.KindChatReminder,
		sendFn: func(ctx context.Context, intent domain.Intent) provider.Result {
			return provider.Result{}
		},
	}
	d := newTestDispatcher(t, chat)

	result := d.Dispatch(context.Background(), domain.NewIntent(domain.KindChatReminder, "123", nil))
	if !errors.Is(result.Err, domain.ErrProvider) {
		t.Fatalf("Err = %v, want ErrProvider", result.Err)
	}
}

func TestDispatchDetachesCallerCancellation(t *testing.T) {
	t.Parallel()

	var sawCanceled, sawDeadline bool
	chat := &stubProvider{
		kind: domain.KindChatReminder,
		sendFn: func(ctx context.Context, intent domain.Intent) provider.Result {
			sawCanceled = ctx.Err() != nil
			_, sawDeadline = ctx.Deadline()
			return provider.Success([]byte(`{"ok":true}`), "")
		},
	}
	d := newTestDispatcher(t, chat)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result := d.Dispatch(ctx, domain.NewIntent(domain.KindChatReminder, "123", nil))
	if !result.OK {
		t.Fatalf("result = %+v, want success", result)
	}
	if sawCanceled {
		t.Fatal("provider context should not inherit caller cancellation")
	}
	if !sawDeadline {
		t.Fatal("provider context should carry the dispatch timeout")
	}
}

func TestDispatchConcurrentIntentsAreIndependent(t *testing.T) {
	t.Parallel()

	chat := &stubProvider{
		kind: domain.KindChatReminder,
		sendFn: func(ctx context.Context, intent domain.Intent) provider.Result {
			return provider.Success([]byte(`{"chat":"`+intent.Recipient()+`"}`), "")
		},
	}
	d := newTestDispatcher(t, chat)

	const workers = 32
	var wg sync.WaitGroup
	errs := make(chan string, workers)
	for i := 0; i < workers; i++ {
		recipient := string(rune('a' + i%26))
		wg.Add(1)
		go func() {
			defer wg.Done()
			result := d.Dispatch(context.Background(), domain.NewIntent(domain.KindChatReminder, recipient, nil))
			if string(result.Data) != `{"chat":"`+recipient+`"}` {
				errs <- string(result.Data)
			}
		}()
	}
	wg.Wait()
	close(errs)

	for got := range errs {
		t.Fatalf("unexpected result data %s", got)
	}
	if chat.calls.Load() != workers {
		t.Fatalf("provider calls = %d, want %d", chat.calls.Load(), workers)
	}
}

func TestDispatchLogsFailureWithCorrelationID(t *testing.T) {
	t.Parallel()

	core, recorded := observer.New(zapcore.InfoLevel)
	chat := &stubProvider{
		kind: domain.KindChatReminder,
		sendFn: func(ctx context.Context, intent domain.Intent) provider.Result {
			return provider.Failure(&provider.ProviderError{Kind: domain.ErrProvider, Message: "Telegram API error"}, []byte(`{"ok":false}`))
		},
	}

	d, err := NewDispatcher([]provider.Provider{chat}, time.Second, zap.New(core))
	if err != nil {
		t.Fatalf("NewDispatcher() error = %v", err)
	}

	ctx := observability.WithCorrelationID(context.Background(), "cid-1")
	d.Dispatch(ctx, domain.NewIntent(domain.KindChatReminder, "123", nil))

	entries := recorded.FilterMessage("intent dispatch failed").All()
	if len(entries) != 1 {
		t.Fatalf("entries = %d, want 1", len(entries))
	}

	fields := entries[0].ContextMap()
	if fields["correlationId"] != "cid-1" {
		t.Fatalf("correlationId = %v, want cid-1", fields["correlationId"])
	}
	if fields["outcome"] != "provider_error" {
		t.Fatalf("outcome = %v, want provider_error", fields["outcome"])
	}
	if fields["providerResponse"] != `{"ok":false}` {
		t.Fatalf("providerResponse = %v", fields["providerResponse"])
	}
}

func TestOutcome(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		result provider.Result
		want   string
	}{
		{result: provider.Success(nil, ""), want: "ok"},
		{result: provider.Failure(domain.ErrMissingRecipient, nil), want: "invalid_input"},
		{result: provider.Failure(domain.ErrNotConfigured, nil), want: "not_configured"},
		{result: provider.Failure(&provider.ProviderError{Kind: domain.ErrRejected}, nil), want: "rejected"},
		{result: provider.Failure(&provider.ProviderError{Kind: domain.ErrTransport}, nil), want: "transport_error"},
		{result: provider.Failure(&provider.ProviderError{}, nil), want: "provider_error"},
	}

	for _, tc := range testCases {
		if got := Outcome(tc.result); got != tc.want {
			t.Fatalf("Outcome(%v) = %q, want %q", tc.result.Err, got, tc.want)
		}
	}
}
