package httpmw

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
)

type ctxKey string

const (
	ctxKeyToken  ctxKey = "token"
	ctxKeyUserID ctxKey = "user_id"
)

// Аутентификация — внешний коллаборатор; валидация токена на стороне gateway.
// Здесь только извлекаем Bearer и X-User-ID и кладём их в контекст запроса.
func AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, uid, err := parseCredentials(r)
		if err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":"` + err.Error() + `"}`))
			return
		}

		ctx := context.WithValue(r.Context(), ctxKeyToken, token)
		ctx = context.WithValue(ctx, ctxKeyUserID, uid)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func parseCredentials(r *http.Request) (token string, uid int64, err error) {
	auth := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(auth, "Bearer ")
	token = strings.TrimSpace(token)
	if !ok || token == "" {
		return "", 0, errors.New("missing bearer token")
	}

	raw := r.Header.Get("X-User-ID")
	if raw == "" {
		return "", 0, errors.New("missing X-User-ID")
	}
	uid, err = strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return "", 0, errors.New("invalid X-User-ID (must be int64)")
	}
	return token, uid, nil
}

func UserIDFromCtx(ctx context.Context) int64 {
	if id, ok := ctx.Value(ctxKeyUserID).(int64); ok {
		return id
	}
	return 0
}
