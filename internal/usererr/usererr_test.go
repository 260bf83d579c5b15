package usererr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestRenderKinds(t *testing.T) {
	cases := []struct {
		kind   Kind
		status int
		step   NextStep
	}{
		{KindValidation, http.StatusBadRequest, StepEdit},
		{KindNetwork, http.StatusServiceUnavailable, StepRetry},
		{KindQuotaExceeded, http.StatusTooManyRequests, StepUpgrade},
		{KindRateLimited, http.StatusTooManyRequests, StepWait},
		{KindNotFound, http.StatusNotFound, StepRetry},
		{KindConflict, http.StatusConflict, StepWait},
		{KindUnauthorized, http.StatusUnauthorized, StepSignIn},
		{KindInternal, http.StatusInternalServerError, StepRetry},
	}
	for _, tc := range cases {
		status, body := Render(New(tc.kind, errors.New("raw detail")))
		if status != tc.status {
			t.Fatalf("%s: expected status %d, got %d", tc.kind, tc.status, status)
		}
		if body.NextStep != tc.step {
			t.Fatalf("%s: expected step %q, got %q", tc.kind, tc.step, body.NextStep)
		}
		if body.Error == "" || body.Error == "raw detail" {
			t.Fatalf("%s: expected gentle message, got %q", tc.kind, body.Error)
		}
	}
}

func TestRenderUnclassifiedIsInternal(t *testing.T) {
	status, body := Render(errors.New("db exploded"))
	if status != http.StatusInternalServerError || body.Kind != KindInternal {
		t.Fatalf("expected internal, got %d %q", status, body.Kind)
	}
}

func TestValidationCarriesFieldThroughWrapping(t *testing.T) {
	err := fmt.Errorf("create task: %w", Validation("title", "Give your task a short title."))
	if !Is(err, KindValidation) {
		t.Fatalf("expected validation kind through wrap")
	}
	_, body := Render(err)
	if body.Field != "title" {
		t.Fatalf("expected field=title, got %q", body.Field)
	}
	if body.Error != "Give your task a short title." {
		t.Fatalf("unexpected message %q", body.Error)
	}
}
