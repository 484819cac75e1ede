package location

import (
	"bufio"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/geoweather/backend/internal/domain"
	"github.com/geoweather/backend/internal/service"
)

var (
	_ service.LocationProvider   = (*StaticProvider)(nil)
	_ service.LocationProvider   = (*IPProvider)(nil)
	_ service.PermissionPrompter = FixedPrompter{}
	_ service.PermissionPrompter = (*TerminalPrompter)(nil)
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestStaticProvider(t *testing.T) {
	coord := domain.Coordinate{Latitude: 43.25, Longitude: 76.95}
	p := NewStaticProvider(coord)

	if !p.Enabled() {
		t.Fatal("static provider should be enabled")
	}
	fix, ok := <-p.RequestFix(context.Background(), domain.DefaultFixRequest())
	if !ok {
		t.Fatal("expected a fix")
	}
	if fix.Err != nil || fix.Coordinate != coord {
		t.Errorf("fix = %+v, want %+v", fix, coord)
	}
}

func TestDisabledProvider(t *testing.T) {
	p := NewDisabledProvider()
	if p.Enabled() {
		t.Fatal("disabled provider reports enabled")
	}
	if _, ok := <-p.RequestFix(context.Background(), domain.DefaultFixRequest()); ok {
		t.Error("disabled provider should close without a fix")
	}
}

func TestIPProvider(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		want    domain.Coordinate
		wantErr bool
	}{
		{
			name:   "success",
			status: http.StatusOK,
			body:   `{"status":"success","lat":43.25,"lon":76.95}`,
			want:   domain.Coordinate{Latitude: 43.25, Longitude: 76.95},
		},
		{
			name:    "lookup failed",
			status:  http.StatusOK,
			body:    `{"status":"fail","message":"reserved range"}`,
			wantErr: true,
		},
		{
			name:    "missing coordinate",
			status:  http.StatusOK,
			body:    `{"status":"success"}`,
			wantErr: true,
		},
		{
			name:    "out of range",
			status:  http.StatusOK,
			body:    `{"status":"success","lat":95,"lon":10}`,
			wantErr: true,
		},
		{
			name:    "server error",
			status:  http.StatusServiceUnavailable,
			body:    ``,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			}))
			defer server.Close()

			p := NewIPProvider(server.URL, time.Second, discardLogger())
			fix, ok := <-p.RequestFix(context.Background(), domain.DefaultFixRequest())
			if !ok {
				t.Fatal("expected one delivery")
			}
			if tt.wantErr {
				if fix.Err == nil {
					t.Errorf("expected error, got fix %+v", fix.Coordinate)
				}
				return
			}
			if fix.Err != nil {
				t.Fatalf("unexpected error: %v", fix.Err)
			}
			if fix.Coordinate != tt.want {
				t.Errorf("coordinate = %+v, want %+v", fix.Coordinate, tt.want)
			}
		})
	}
}

func TestFixedPrompter(t *testing.T) {
	for _, granted := range []bool{true, false} {
		p := FixedPrompter{Granted: granted}
		got, err := p.RequestLocationPermission(context.Background())
		if err != nil || got != granted {
			t.Errorf("RequestLocationPermission() = %v, %v; want %v", got, err, granted)
		}
		if p.ShouldShowRationale() {
			t.Error("fixed prompter never shows a rationale")
		}
	}
}

func TestTerminalPrompter(t *testing.T) {
	tests := []struct {
		input         string
		want          bool
		wantRationale bool
	}{
		{input: "y\n", want: true},
		{input: "YES\n", want: true},
		{input: "n\n", want: false, wantRationale: true},
		{input: "\n", want: false, wantRationale: true},
		{input: "y", want: true},
	}

	for _, tt := range tests {
		t.Run(strings.TrimSpace(tt.input), func(t *testing.T) {
			var out strings.Builder
			p := NewTerminalPrompter(strings.NewReader(tt.input), &out)

			if p.ShouldShowRationale() {
				t.Fatal("no rationale before the first answer")
			}
			got, err := p.RequestLocationPermission(context.Background())
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("granted = %v, want %v", got, tt.want)
			}
			if p.ShouldShowRationale() != tt.wantRationale {
				t.Errorf("ShouldShowRationale() = %v, want %v", p.ShouldShowRationale(), tt.wantRationale)
			}
			if !strings.Contains(out.String(), "[y/N]") {
				t.Errorf("prompt %q missing choices", out.String())
			}
		})
	}
}

func TestTerminalPrompter_EOF(t *testing.T) {
	p := NewTerminalPrompter(strings.NewReader(""), io.Discard)
	if _, err := p.RequestLocationPermission(context.Background()); err == nil {
		t.Error("expected error on closed input")
	}
}

func TestTerminalPrompter_CanceledLeavesInputUnread(t *testing.T) {
	in := bufio.NewReader(strings.NewReader("y\nn\n"))
	var out strings.Builder
	p := NewTerminalPrompter(in, &out)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := p.RequestLocationPermission(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if out.Len() != 0 {
		t.Errorf("canceled request should not prompt, wrote %q", out.String())
	}

	granted, err := p.RequestLocationPermission(context.Background())
	if err != nil || !granted {
		t.Fatalf("second request = %v, %v; want the first line", granted, err)
	}

	// the next line is still there for whoever shares the reader
	line, err := in.ReadString('\n')
	if err != nil || line != "n\n" {
		t.Errorf("shared reader left %q, %v", line, err)
	}
}
