package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/roofpo/backend/internal/domain/shared"
	"github.com/roofpo/backend/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

// IdempotencyKeyHeader lets clients retry a create without duplicating it
const IdempotencyKeyHeader = "Idempotency-Key"

const maxIdempotencyKeyLength = 128

// Idempotency rejects a second request carrying the same Idempotency-Key from
// the same user within ttl. Keys of failed requests are released so the client
// can retry. Requests without the header pass through.
func Idempotency(store shared.IdempotencyStore, ttl time.Duration, log *zap.Logger) gin.HandlerFunc {
	if log == nil {
		log = zap.NewNop()
	}
	return func(c *gin.Context) {
		key := c.GetHeader(IdempotencyKeyHeader)
		if key == "" || store == nil {
			c.Next()
			return
		}
		if len(key) > maxIdempotencyKeyLength {
			abortWithError(c, http.StatusBadRequest, dto.ErrCodeInvalidInput, "Idempotency-Key is too long")
			return
		}

		actor, _ := GetActor(c)
		scoped := actor.UserID.String() + ":" + c.FullPath() + ":" + key
		ctx := c.Request.Context()

		fresh, err := store.MarkProcessed(ctx, scoped, ttl)
		if err != nil {
			log.Warn("Idempotency store unavailable", zap.Error(err))
			c.Next()
			return
		}
		if !fresh {
			abortWithError(c, http.StatusConflict, dto.ErrCodeDuplicateRequest,
				"A request with this Idempotency-Key was already processed")
			return
		}

		c.Next()

		if c.Writer.Status() >= http.StatusBadRequest {
			if err := store.Forget(ctx, scoped); err != nil {
				log.Warn("Failed to release idempotency key", zap.Error(err))
			}
		}
	}
}
