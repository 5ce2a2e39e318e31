package middleware

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"sync"
	"time"
)

const (
	IdempotencyHeader    = "Idempotency-Key"
	IdempotentReplay     = "Idempotent-Replay"
	CodeRequestInFlight  = "IDEMPOTENCY_IN_PROGRESS"
	CodeKeyReused        = "IDEMPOTENCY_KEY_REUSED"
	idempotencySweepStep = 10 * time.Minute
)

// ClaimResult says what a request carrying an already seen key should do.
type ClaimResult int

const (
	ClaimAcquired ClaimResult = iota // first use, run the handler
	ClaimReplay                      // finished earlier, replay the stored answer
	ClaimInFlight                    // a request with this key is still running
	ClaimMismatch                    // key was used with a different payload
)

type IdempotencyStore interface {
	Claim(key, fingerprint string) (*CachedResponse, ClaimResult)
	Complete(key string, response *CachedResponse)
	Release(key string)
	Stop()
}

type CachedResponse struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
}

type idempotencyEntry struct {
	fingerprint string
	response    *CachedResponse // nil while the first request runs
	claimedAt   time.Time
}

type InMemoryIdempotencyStore struct {
	mu      sync.Mutex
	entries map[string]*idempotencyEntry
	ttl     time.Duration
	now     func() time.Time
	stopCh  chan struct{}
	once    sync.Once
}

func NewInMemoryIdempotencyStore(ttl time.Duration) *InMemoryIdempotencyStore {
	s := &InMemoryIdempotencyStore{
		entries: make(map[string]*idempotencyEntry),
		ttl:     ttl,
		now:     time.Now,
		stopCh:  make(chan struct{}),
	}
	go s.sweepLoop(min(ttl, idempotencySweepStep))
	return s
}

func (s *InMemoryIdempotencyStore) Claim(key, fingerprint string) (*CachedResponse, ClaimResult) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[key]
	if ok && s.expired(entry) {
		delete(s.entries, key)
		ok = false
	}
	switch {
	case !ok:
		s.entries[key] = &idempotencyEntry{fingerprint: fingerprint, claimedAt: s.now()}
		return nil, ClaimAcquired
	case entry.fingerprint != fingerprint:
		return nil, ClaimMismatch
	case entry.response == nil:
		return nil, ClaimInFlight
	default:
		return entry.response, ClaimReplay
	}
}

// Complete stores the answer for a claimed key. The TTL restarts from here.
func (s *InMemoryIdempotencyStore) Complete(key string, response *CachedResponse) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if entry, ok := s.entries[key]; ok {
		entry.response = response
		entry.claimedAt = s.now()
	}
}

// Release forgets a claimed key so the client may retry it.
func (s *InMemoryIdempotencyStore) Release(key string) {
	s.mu.Lock()
	delete(s.entries, key)
	s.mu.Unlock()
}

func (s *InMemoryIdempotencyStore) Stop() {
	s.once.Do(func() { close(s.stopCh) })
}

func (s *InMemoryIdempotencyStore) expired(entry *idempotencyEntry) bool {
	return s.now().Sub(entry.claimedAt) > s.ttl
}

func (s *InMemoryIdempotencyStore) sweepLoop(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.mu.Lock()
			for key, entry := range s.entries {
				if s.expired(entry) {
					delete(s.entries, key)
				}
			}
			s.mu.Unlock()
		case <-s.stopCh:
			return
		}
	}
}

// recordingWriter tees the handler's output so a successful answer can be stored.
type recordingWriter struct {
	http.ResponseWriter
	status int
	body   bytes.Buffer
}

func (rw *recordingWriter) WriteHeader(status int) {
	rw.status = status
	rw.ResponseWriter.WriteHeader(status)
}

func (rw *recordingWriter) Write(b []byte) (int, error) {
	rw.body.Write(b)
	return rw.ResponseWriter.Write(b)
}

// Idempotency makes retried mutations safe. The first request with a key runs;
// a concurrent duplicate gets 409, a later one gets the stored 2xx answer, and
// reusing the key with another body gets 422. Failed attempts free the key.
// Keys are scoped to method and path.
func Idempotency(store IdempotencyStore, headerName string) func(http.Handler) http.Handler {
	if headerName == "" {
		headerName = IdempotencyHeader
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			clientKey := r.Header.Get(headerName)
			if clientKey == "" || !isMutating(r.Method) {
				next.ServeHTTP(w, r)
				return
			}

			fingerprint, err := fingerprintBody(r)
			if err != nil {
				reject(w, http.StatusRequestEntityTooLarge, "REQUEST_TOO_LARGE", "Request body could not be read")
				return
			}

			key := r.Method + " " + r.URL.Path + " " + clientKey
			cached, result := store.Claim(key, fingerprint)
			switch result {
			case ClaimReplay:
				replay(w, cached)
				return
			case ClaimInFlight:
				reject(w, http.StatusConflict, CodeRequestInFlight, "A request with this idempotency key is still being processed")
				return
			case ClaimMismatch:
				reject(w, http.StatusUnprocessableEntity, CodeKeyReused, "Idempotency key was already used with a different request body")
				return
			}

			finished := false
			defer func() {
				if !finished {
					store.Release(key) // handler panicked
				}
			}()

			rw := &recordingWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rw, r)
			finished = true

			if rw.status < 200 || rw.status > 299 {
				store.Release(key)
				return
			}
			store.Complete(key, &CachedResponse{
				StatusCode: rw.status,
				Headers:    w.Header().Clone(),
				Body:       rw.body.Bytes(),
			})
		})
	}
}

// fingerprintBody hashes the body and puts it back for the handler.
func fingerprintBody(r *http.Request) (string, error) {
	if r.Body == nil {
		return "", nil
	}
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return "", err
	}
	r.Body = io.NopCloser(bytes.NewReader(body))
	sum := sha256.Sum256(body)
	return hex.EncodeToString(sum[:]), nil
}

func isMutating(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPatch, http.MethodPut, http.MethodDelete:
		return true
	default:
		return false
	}
}

func replay(w http.ResponseWriter, cached *CachedResponse) {
	for name, values := range cached.Headers {
		for _, v := range values {
			w.Header().Add(name, v)
		}
	}
	w.Header().Set(IdempotentReplay, "true")
	w.WriteHeader(cached.StatusCode)
	_, _ = w.Write(cached.Body)
}
