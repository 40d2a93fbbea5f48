package http

import (
	"context"
	"net"
	"net/http"
	"strconv"

	"github.com/DRSN-tech/shop-backend/internal/usecase"
	"github.com/DRSN-tech/shop-backend/pkg/e"
)

type identityKey struct{}

// Identity — личность запроса, установленная вышестоящим auth-прокси
// через доверенные заголовки X-User-ID и X-User-Admin.
type Identity struct {
	UserID  int64
	IsAdmin bool
}

func identityFrom(ctx context.Context) Identity {
	if id, ok := ctx.Value(identityKey{}).(Identity); ok {
		return id
	}
	return Identity{}
}

// withIdentity разбирает доверенные заголовки и кладёт личность запроса
// вместе с метаданными аудита в контекст.
func withIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var identity Identity

		if raw := r.Header.Get("X-User-ID"); raw != "" {
			if userID, err := strconv.ParseInt(raw, 10, 64); err == nil && userID > 0 {
				identity.UserID = userID
			}
		}
		if raw := r.Header.Get("X-User-Admin"); raw != "" {
			identity.IsAdmin, _ = strconv.ParseBool(raw)
		}

		meta := usecase.AuditMeta{
			IPAddress: clientIP(r),
			UserAgent: r.UserAgent(),
		}
		if identity.UserID > 0 {
			userID := identity.UserID
			meta.UserID = &userID
		}

		ctx := context.WithValue(r.Context(), identityKey{}, identity)
		ctx = usecase.WithAuditMeta(ctx, meta)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requireUser отклоняет запросы без установленной личности.
func requireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if identityFrom(r.Context()).UserID <= 0 {
			WriteError(w, e.ErrUserRequired)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// requireAdmin пускает только администраторов.
func requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity := identityFrom(r.Context())
		if identity.UserID <= 0 {
			WriteError(w, e.ErrUserRequired)
			return
		}
		if !identity.IsAdmin {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusForbidden)
			w.Write([]byte(`{"code":403,"message":"admin access required"}`))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func clientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		return forwarded
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
