package middleware

import (
	"context"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"incubapp/internal/common"
	"incubapp/internal/monitoring"
	"incubapp/internal/schema"
)

const (
	sessionContextKey = "schema_routing_session"

	// ProgrammeHeader carries the programme code on routed requests.
	ProgrammeHeader = "X-Programme-Code"
	programmeQuery  = "programme"
)

// ProgrammeLookup checks that a resolved code names a real programme. The
// cached programme service satisfies this.
type ProgrammeLookup interface {
	Exists(ctx context.Context, code string) bool
}

// SessionFactory hands out a connection for the duration of one request.
// The release func must be called exactly once after Reset.
type SessionFactory func(ctx context.Context) (schema.Querier, func(), error)

// PoolSessionFactory acquires dedicated connections from a pgx pool. A
// dedicated connection is required: search_path is connection state and a
// pool-level Exec could land on any connection.
func PoolSessionFactory(pool *pgxpool.Pool) SessionFactory {
	return func(ctx context.Context) (schema.Querier, func(), error) {
		conn, err := pool.Acquire(ctx)
		if err != nil {
			return nil, nil, err
		}
		return conn, conn.Release, nil
	}
}

// SchemaRouter routes each request to its programme's schema. State machine
// per request: Unrouted (no schema selected) -> Routed (session pinned to the
// programme schema) -> Released (search path reset, connection back to pool).
//
// Resolution failure fails open: the request proceeds against the public
// schema. Routes that cannot run unrouted add RequireProgramme.
type SchemaRouter struct {
	factory    SessionFactory
	programmes ProgrammeLookup
}

func NewSchemaRouter(factory SessionFactory, programmes ProgrammeLookup) *SchemaRouter {
	return &SchemaRouter{factory: factory, programmes: programmes}
}

func programmeCode(c echo.Context) string {
	if code := c.Request().Header.Get(ProgrammeHeader); code != "" {
		return code
	}
	return c.QueryParam(programmeQuery)
}

// Route resolves the programme and pins a routing session for the request.
func (m *SchemaRouter) Route() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			code := programmeCode(c)
			if code == "" {
				monitoring.RoutedRequests.WithLabelValues("public").Inc()
				return next(c)
			}

			ctx := c.Request().Context()
			if _, err := schema.Resolve(code); err != nil {
				log.Warn().Str("code", code).Msg("Unroutable programme code, falling back to public schema")
				monitoring.RoutedRequests.WithLabelValues("unresolved").Inc()
				return next(c)
			}
			if m.programmes != nil && !m.programmes.Exists(ctx, code) {
				monitoring.RoutedRequests.WithLabelValues("unresolved").Inc()
				return next(c)
			}

			db, release, err := m.factory(ctx)
			if err != nil {
				log.Error().Err(err).Str("code", code).Msg("Failed to acquire routing connection")
				return echo.NewHTTPError(http.StatusServiceUnavailable, "Database unavailable")
			}
			defer release()

			sess := schema.NewRoutingSession(db)
			if err := sess.SetSchema(ctx, code); err != nil {
				log.Error().Err(err).Str("code", code).Msg("Failed to set schema search path")
				monitoring.RoutedRequests.WithLabelValues("error").Inc()
				return echo.NewHTTPError(http.StatusInternalServerError, "Schema routing failed")
			}

			WithRoutingSession(c, sess)
			c.SetRequest(c.Request().WithContext(common.WithProgrammeCode(ctx, code)))
			monitoring.RoutedRequests.WithLabelValues("routed").Inc()

			err = next(c)

			// The connection goes back to the pool after this request; the
			// search path must never leak into an unrelated one.
			if resetErr := sess.Reset(c.Request().Context()); resetErr != nil {
				log.Error().Err(resetErr).Str("code", code).Msg("Failed to reset search path")
			}
			return err
		}
	}
}

// RequireProgramme fails closed: requests without a routed session are
// rejected. Used on routes that must not run against the public schema.
func RequireProgramme() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if _, ok := RoutingSessionFromContext(c); !ok {
				return echo.NewHTTPError(http.StatusBadRequest, "A valid programme code is required")
			}
			return next(c)
		}
	}
}

// WithRoutingSession attaches a routing session to the request. Route does
// this for every routed request; handler tests use it directly.
func WithRoutingSession(c echo.Context, sess *schema.RoutingSession) {
	c.Set(sessionContextKey, sess)
}

// RoutingSessionFromContext returns the request's routing session, if any.
func RoutingSessionFromContext(c echo.Context) (*schema.RoutingSession, bool) {
	sess, ok := c.Get(sessionContextKey).(*schema.RoutingSession)
	return sess, ok
}
