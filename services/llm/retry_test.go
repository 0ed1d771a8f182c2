package llm

import (
	"context"
	"errors"
	"testing"
	"time"
)

type flakyClient struct {
	failures int
	calls    int
}

func (f *flakyClient) Generate(ctx context.Context, prompt string, params GenerationParams) (string, error) {
	f.calls++
	if f.calls <= f.failures {
		return "", errors.New("upstream unavailable")
	}
	return "ok: " + prompt, nil
}

func TestRetryClientRecovers(t *testing.T) {
	inner := &flakyClient{failures: 2}
	c := NewRetryClient(inner, 1000, 3)
	c.baseDelay = time.Millisecond

	out, err := c.Generate(context.Background(), "hello", GenerationParams{})
	if err != nil {
		t.Fatalf("expected recovery after retries, got %v", err)
	}
	if out != "ok: hello" {
		t.Errorf("unexpected output %q", out)
	}
	if inner.calls != 3 {
		t.Errorf("expected 3 attempts, got %d", inner.calls)
	}
}

func TestRetryClientExhausted(t *testing.T) {
	inner := &flakyClient{failures: 10}
	c := NewRetryClient(inner, 1000, 2)
	c.baseDelay = time.Millisecond

	if _, err := c.Generate(context.Background(), "hello", GenerationParams{}); err == nil {
		t.Fatal("expected error after exhausting attempts")
	}
	if inner.calls != 2 {
		t.Errorf("expected 2 attempts, got %d", inner.calls)
	}
}

func TestRetryClientContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	inner := &flakyClient{failures: 10}
	c := NewRetryClient(inner, 1000, 3)

	if _, err := c.Generate(ctx, "hello", GenerationParams{}); err == nil {
		t.Fatal("expected error from canceled context")
	}
}
