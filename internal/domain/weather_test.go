package domain

import (
	"errors"
	"math"
	"testing"
)

func TestCoordinateValidate(t *testing.T) {
	tests := []struct {
		name    string
		coord   Coordinate
		wantErr bool
	}{
		{name: "almaty", coord: Coordinate{Latitude: 43.2567, Longitude: 76.9286}},
		{name: "bounds", coord: Coordinate{Latitude: -90, Longitude: 180}},
		{name: "latitude too high", coord: Coordinate{Latitude: 90.5}, wantErr: true},
		{name: "longitude too low", coord: Coordinate{Longitude: -180.1}, wantErr: true},
		{name: "NaN latitude", coord: Coordinate{Latitude: math.NaN()}, wantErr: true},
		{name: "NaN longitude", coord: Coordinate{Longitude: math.NaN()}, wantErr: true},
		{name: "infinite latitude", coord: Coordinate{Latitude: math.Inf(1)}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.coord.Validate()
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidCoordinate) {
					t.Errorf("Validate(%+v) = %v, want ErrInvalidCoordinate", tt.coord, err)
				}
				return
			}
			if err != nil {
				t.Errorf("Validate(%+v) = %v, want nil", tt.coord, err)
			}
		})
	}
}
