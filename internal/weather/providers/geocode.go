package providers

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/kelvins/geocoder"
)

// Coordinates is a WGS84 point.
type Coordinates struct {
	Latitude  float64
	Longitude float64
}

// Geocoder resolves a city name to coordinates.
type Geocoder interface {
	Geocode(ctx context.Context, city string) (Coordinates, error)
}

var errCityNotFound = errors.New("city not found")

// GoogleGeocoder resolves cities with the Google Geocoding API.
type GoogleGeocoder struct {
	mu sync.Mutex
}

// NewGoogleGeocoder configures the geocoding API key. The underlying client
// keeps the key in package state, so only one key per process is supported.
func NewGoogleGeocoder(apiKey string) *GoogleGeocoder {
	geocoder.ApiKey = apiKey
	return &GoogleGeocoder{}
}

func (g *GoogleGeocoder) Geocode(ctx context.Context, city string) (Coordinates, error) {
	if err := ctx.Err(); err != nil {
		return Coordinates{}, err
	}

	g.mu.Lock()
	loc, err := geocoder.Geocoding(geocoder.Address{City: city})
	g.mu.Unlock()
	if err != nil {
		return Coordinates{}, fmt.Errorf("geocode %s: %w", city, err)
	}
	return Coordinates{Latitude: loc.Latitude, Longitude: loc.Longitude}, nil
}

// StaticGeocoder answers from a fixed table. Lookups ignore case.
type StaticGeocoder map[string]Coordinates

// KnownCities covers the cities the service ships defaults for.
var KnownCities = StaticGeocoder{
	"москва":           {55.7558, 37.6173},
	"санкт-петербург":  {59.9343, 30.3351},
	"новосибирск":      {55.0084, 82.9357},
	"екатеринбург":     {56.8389, 60.6057},
	"казань":           {55.7961, 49.1064},
	"moscow":           {55.7558, 37.6173},
	"saint petersburg": {59.9343, 30.3351},
	"novosibirsk":      {55.0084, 82.9357},
	"yekaterinburg":    {56.8389, 60.6057},
	"kazan":            {55.7961, 49.1064},
}

func (s StaticGeocoder) Geocode(_ context.Context, city string) (Coordinates, error) {
	if c, ok := s[strings.ToLower(strings.TrimSpace(city))]; ok {
		return c, nil
	}
	return Coordinates{}, fmt.Errorf("%w: %s", errCityNotFound, city)
}

// ChainGeocoder tries each geocoder in order and returns the first success.
type ChainGeocoder []Geocoder

func (c ChainGeocoder) Geocode(ctx context.Context, city string) (Coordinates, error) {
	var errs []error
	for _, g := range c {
		coords, err := g.Geocode(ctx, city)
		if err == nil {
			return coords, nil
		}
		errs = append(errs, err)
	}
	if len(errs) == 0 {
		return Coordinates{}, fmt.Errorf("%w: %s", errCityNotFound, city)
	}
	return Coordinates{}, errors.Join(errs...)
}

// CachedGeocoder wraps a Geocoder with an in-memory LRU cache.
type CachedGeocoder struct {
	inner    Geocoder
	cache    *lruCache
	onLookup func(hit bool)
}

// NewCachedGeocoder creates a cache decorator around a geocoder. onLookup,
// when non-nil, is called after every cache lookup.
func NewCachedGeocoder(inner Geocoder, maxEntries int, onLookup func(hit bool)) *CachedGeocoder {
	if onLookup == nil {
		onLookup = func(bool) {}
	}
	return &CachedGeocoder{inner: inner, cache: newLRUCache(maxEntries), onLookup: onLookup}
}

func (c *CachedGeocoder) Geocode(ctx context.Context, city string) (Coordinates, error) {
	key := strings.ToLower(strings.TrimSpace(city))
	if coords, ok := c.cache.get(key); ok {
		c.onLookup(true)
		return coords, nil
	}
	c.onLookup(false)

	coords, err := c.inner.Geocode(ctx, city)
	if err != nil {
		return coords, err
	}
	c.cache.put(key, coords)
	return coords, nil
}

// lruCache is a small thread-safe LRU cache of coordinates.
type lruCache struct {
	maxEntries int
	mu         sync.Mutex
	entries    map[string]*entry
	head       *entry // most recently used
	tail       *entry // least recently used
}

type entry struct {
	key   string
	value Coordinates
	prev  *entry
	next  *entry
}

func newLRUCache(maxEntries int) *lruCache {
	if maxEntries <= 0 {
		maxEntries = 1
	}
	return &lruCache{maxEntries: maxEntries, entries: make(map[string]*entry)}
}

func (c *lruCache) get(key string) (Coordinates, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return Coordinates{}, false
	}
	c.moveToFront(e)
	return e.value, true
}

func (c *lruCache) put(key string, value Coordinates) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok {
		e.value = value
		c.moveToFront(e)
		return
	}

	e := &entry{key: key, value: value}
	c.entries[key] = e
	c.addToFront(e)

	if len(c.entries) > c.maxEntries {
		delete(c.entries, c.tail.key)
		c.remove(c.tail)
	}
}

func (c *lruCache) moveToFront(e *entry) {
	if e == c.head {
		return
	}
	c.remove(e)
	c.addToFront(e)
}

func (c *lruCache) addToFront(e *entry) {
	e.next = c.head
	e.prev = nil
	if c.head != nil {
		c.head.prev = e
	}
	c.head = e
	if c.tail == nil {
		c.tail = e
	}
}

func (c *lruCache) remove(e *entry) {
	if e.prev != nil {
		e.prev.next = e.next
	} else {
		c.head = e.next
	}
	if e.next != nil {
		e.next.prev = e.prev
	} else {
		c.tail = e.prev
	}
}
