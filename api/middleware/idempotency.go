package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/hadeeqati/hadeeqati-backend/api/responses"
	"github.com/hadeeqati/hadeeqati-backend/api/validators"
	pkgerrors "github.com/hadeeqati/hadeeqati-backend/pkg/errors"
	"github.com/hadeeqati/hadeeqati-backend/pkg/logger"
	pkgredis "github.com/hadeeqati/hadeeqati-backend/pkg/redis"
)

const (
	defaultIdempotencyTTL = 24 * time.Hour
	idempotencyKeyHeader  = "Idempotency-Key"
	replayedHeader        = "Idempotent-Replayed"
)

// idempotentRoutes maps "METHOD pattern" to how long a finished response is
// replayable.
var idempotentRoutes = map[string]time.Duration{
	http.MethodPost + " /api/v1/marketplace/orders": defaultIdempotencyTTL,
}

// idempotencyRecord starts out Pending while the first request runs and is
// overwritten with the response once it finishes.
type idempotencyRecord struct {
	RequestHash string `json:"request_hash"`
	Pending     bool   `json:"pending,omitempty"`
	Status      int    `json:"status,omitempty"`
	ContentType string `json:"content_type,omitempty"`
	Body        []byte `json:"body,omitempty"`
}

// Idempotency replays the stored response for a repeated Idempotency-Key on
// the configured routes. Reusing a key with a different body is rejected.
func Idempotency(store pkgredis.IdempotencyStore, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ttl, ok := idempotentRoutes[r.Method+" "+routePattern(r)]
			// The header is optional; requests without one are never replayed.
			clientKey := strings.TrimSpace(r.Header.Get(idempotencyKeyHeader))
			if !ok || store == nil || clientKey == "" {
				next.ServeHTTP(w, r)
				return
			}
			ctx := r.Context()

			body, err := validators.ReadBoundedBody(w, r)
			if err != nil {
				responses.WriteError(ctx, logg, w, err)
				return
			}
			requestHash := hashBody(body)
			key := store.IdempotencyKey(buildScope(r), clientKey)

			pending, _ := json.Marshal(idempotencyRecord{RequestHash: requestHash, Pending: true})
			acquired, err := store.SetNX(ctx, key, string(pending), ttl)
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reserve idempotency key"))
				return
			}
			if !acquired {
				stored, err := store.Get(ctx, key)
				switch {
				case errors.Is(err, redis.Nil):
					// Released between the two calls; the client may retry.
					responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeIdempotency, "a request with this idempotency key is still in progress"))
				case err != nil:
					responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check idempotency"))
				default:
					replayRecord(ctx, logg, w, stored, requestHash)
				}
				return
			}

			rec := &responseCapture{ResponseWriter: w}
			next.ServeHTTP(rec, r)
			finish(ctx, store, logg, key, ttl, idempotencyRecord{
				RequestHash: requestHash,
				Status:      defaultStatus(rec.status),
				ContentType: rec.Header().Get("Content-Type"),
				Body:        rec.body.Bytes(),
			})
		})
	}
}

// finish replaces the pending marker with the response. Server failures
// release the key instead so the client can retry.
func finish(ctx context.Context, store pkgredis.IdempotencyStore, logg *logger.Logger, key string, ttl time.Duration, record idempotencyRecord) {
	if record.Status >= http.StatusInternalServerError {
		logError(ctx, logg, "release idempotency key", store.Del(ctx, key))
		return
	}
	payload, err := json.Marshal(record)
	if err != nil {
		logError(ctx, logg, "marshal idempotency record", err)
		logError(ctx, logg, "release idempotency key", store.Del(ctx, key))
		return
	}
	logError(ctx, logg, "persist idempotency record", store.Set(ctx, key, string(payload), ttl))
}

func replayRecord(ctx context.Context, logg *logger.Logger, w http.ResponseWriter, stored, requestHash string) {
	var record idempotencyRecord
	if err := json.Unmarshal([]byte(stored), &record); err != nil {
		responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode idempotency record"))
		return
	}
	switch {
	case record.RequestHash != requestHash:
		responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeIdempotency, "idempotency key reused with different request body"))
	case record.Pending:
		responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeIdempotency, "a request with this idempotency key is still in progress"))
	default:
		if record.ContentType != "" {
			w.Header().Set("Content-Type", record.ContentType)
		}
		w.Header().Set(replayedHeader, "true")
		w.WriteHeader(record.Status)
		_, _ = w.Write(record.Body)
	}
}

// buildScope keeps keys from different users or endpoints apart.
func buildScope(r *http.Request) string {
	return strings.Join([]string{UserIDFromContext(r.Context()), r.Method, r.URL.Path}, "|")
}

func hashBody(payload []byte) string {
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:])
}

func defaultStatus(value int) int {
	if value == 0 {
		return http.StatusOK
	}
	return value
}

func routePattern(r *http.Request) string {
	if pattern := matchedPattern(r); pattern != "" {
		return pattern
	}
	return r.URL.Path
}

type responseCapture struct {
	http.ResponseWriter
	body   bytes.Buffer
	status int
}

func (r *responseCapture) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *responseCapture) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	r.body.Write(b)
	return r.ResponseWriter.Write(b)
}

func logError(ctx context.Context, logg *logger.Logger, msg string, err error) {
	if logg == nil || err == nil {
		return
	}
	logg.Error(ctx, msg, err)
}
