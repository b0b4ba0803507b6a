//go:build !js

package launcher

import (
	"errors"
	"strings"
	"testing"

	"github.com/heliodyne/pulseview/types"
	"github.com/heliodyne/pulseview/viewstate"
)

func TestNewReportsMissingBinary(t *testing.T) {
	_, err := New("pulseview-companion-that-does-not-exist", nil)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestViewURL(t *testing.T) {
	v := types.DefaultViewState()
	v.Dataset = "2024_11/run_7"
	v.Channels = []int{0, 2}

	got, err := ViewURL("http://localhost:8080/", v)
	if err != nil {
		t.Fatalf("ViewURL: %v", err)
	}
	if !strings.HasPrefix(got, "http://localhost:8080/?") {
		t.Fatalf("url = %q", got)
	}

	// The query round-trips back to the same view.
	query := got[strings.Index(got, "?")+1:]
	parsed, err := viewstate.Deserialize(query)
	if err != nil {
		t.Fatalf("Deserialize: %v", err)
	}
	if !parsed.Equal(v) {
		t.Fatalf("round trip changed the view:\n got %+v\nwant %+v", parsed, v)
	}
}

func TestViewURLRejectsBadBase(t *testing.T) {
	if _, err := ViewURL("://nope", types.DefaultViewState()); err == nil {
		t.Fatal("expected an error for invalid base URL")
	}
}
