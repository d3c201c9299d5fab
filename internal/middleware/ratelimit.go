package middleware

import (
	"net/http"

	"github.com/ulule/limiter/v3"
	stdlibmw "github.com/ulule/limiter/v3/drivers/middleware/stdlib"
	memorystore "github.com/ulule/limiter/v3/drivers/store/memory"

	"github.com/tomorrow-architect/planner-api/internal/request"
)

const defaultAIRate = "5-M"

// RateLimit returns middleware that throttles requests per client IP using
// ulule/limiter with an in-memory store. The rate uses limiter's formatted
// notation, e.g. "5-M" for five requests per minute.
func RateLimit(rateStr string) (func(http.Handler) http.Handler, error) {
	if rateStr == "" {
		rateStr = defaultAIRate
	}

	rate, err := limiter.NewRateFromFormatted(rateStr)
	if err != nil {
		return nil, err
	}

	store := memorystore.NewStore()
	instance := limiter.New(store, rate)

	keyGetter := func(r *http.Request) string {
		return request.ClientIP(r)
	}

	mw := stdlibmw.NewMiddleware(instance, stdlibmw.WithKeyGetter(keyGetter))
	return mw.Handler, nil
}
