package geo

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

type stubGeocoder struct {
	name   string
	coords map[string]Coords
	calls  int
}

func (s *stubGeocoder) Name() string { return s.name }

func (s *stubGeocoder) Geocode(ctx context.Context, query string) (Coords, error) {
	s.calls++
	if c, ok := s.coords[query]; ok {
		return c, nil
	}
	return Coords{}, errors.New("no match")
}

type stubReverse struct {
	label string
	err   error
	calls int
}

func (s *stubReverse) Reverse(ctx context.Context, c Coords) (string, error) {
	s.calls++
	return s.label, s.err
}

func newTestResolver(geocoders []Geocoder, reverse ReverseGeocoder) Resolver {
	return NewResolver(Config{CacheSize: 8}, geocoders, reverse, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestResolveNamedFallsThroughGeocoders(t *testing.T) {
	kakao := &stubGeocoder{name: "kakao"}
	openweather := &stubGeocoder{name: "openweather", coords: map[string]Coords{"강남구": {Lat: 37.51, Lon: 127.04}}}
	r := newTestResolver([]Geocoder{kakao, openweather}, nil)

	place, err := r.Resolve(context.Background(), Query{Name: "강남구", Language: "ko"})
	require.NoError(t, err)
	require.Equal(t, "강남구", place.Name)
	require.Equal(t, "openweather", place.Source)
	require.Equal(t, 1, kakao.calls)

	place, err = r.Resolve(context.Background(), Query{Name: "강남구"})
	require.NoError(t, err)
	require.Equal(t, "cache", place.Source)
	require.Equal(t, 1, kakao.calls)
	require.Equal(t, 1, openweather.calls)
}

func TestResolveNamedFailureUsesDevice(t *testing.T) {
	reverse := &stubReverse{label: "Seongnam-si, KR"}
	r := newTestResolver([]Geocoder{&stubGeocoder{name: "kakao"}}, reverse)
	device := &Coords{Lat: 37.42, Lon: 127.12}

	place, err := r.Resolve(context.Background(), Query{Name: "없는곳", Device: device})
	require.NoError(t, err)
	require.Equal(t, "Seongnam-si, KR", place.Name)
	require.Equal(t, "device", place.Source)
	require.Equal(t, *device, place.Coords)
}

func TestResolveNamedFailureWithoutDevice(t *testing.T) {
	r := newTestResolver([]Geocoder{&stubGeocoder{name: "kakao"}}, nil)

	_, err := r.Resolve(context.Background(), Query{Name: "없는곳"})
	require.ErrorIs(t, err, ErrLocationNotFound)
	require.Contains(t, err.Error(), "없는곳")
}

func TestResolveDeviceLabel(t *testing.T) {
	reverse := &stubReverse{err: errors.New("boom")}
	r := newTestResolver(nil, reverse)

	place, err := r.Resolve(context.Background(), Query{Device: &Coords{Lat: 1, Lon: 2}, Language: "en"})
	require.NoError(t, err)
	require.Equal(t, "current location", place.Name)

	_, err = r.Resolve(context.Background(), Query{})
	require.ErrorIs(t, err, ErrLocationNotFound)
}
