package common

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/Rana718/transit-studio/internal/types"
)

// GTFS tables touched by the route cascade.
const (
	RoutesTable    = "routes"
	TripsTable     = "trips"
	StopTimesTable = "stop_times"
	ShapesTable    = "shapes"

	RouteIDColumn = "route_id"
	TripIDColumn  = "trip_id"
	ShapeIDColumn = "shape_id"
)

// Execer is the part of a transaction the cascade needs. Exec returns the
// number of affected rows.
type Execer interface {
	Exec(ctx context.Context, query string, args ...any) (int64, error)
	Count(ctx context.Context, query string, args ...any) (int, error)
}

// CascadeDeleteRoute removes a route and, depending on opts, its trips with
// their stop times and the shapes only that route uses. It must run inside a
// single transaction owned by the caller.
//
// Shapes are deleted before trips so the route's shape ids can still be
// resolved through the trips table.
func CascadeDeleteRoute(ctx context.Context, tx Execer, d Dialect, routeID string, opts types.CascadeOptions) (*types.CascadeResult, error) {
	qb := d.Builder()
	q := d.Quote

	countSQL, countArgs, err := qb.Select("COUNT(*)").From(q(RoutesTable)).
		Where(d.KeyMatch(RouteIDColumn, routeID)).ToSql()
	if err != nil {
		return nil, err
	}
	n, err := tx.Count(ctx, countSQL, countArgs...)
	if err != nil {
		return nil, fmt.Errorf("failed to look up route %s: %w", routeID, err)
	}
	if n == 0 {
		return nil, fmt.Errorf("route %s: %w", routeID, ErrNotFound)
	}

	routeTrips := fmt.Sprintf("SELECT %s FROM %s WHERE %s = ?", q(TripIDColumn), q(TripsTable), d.AsText(RouteIDColumn))
	routeShapes := fmt.Sprintf("SELECT %s FROM %s WHERE %s = ? AND %s IS NOT NULL",
		q(ShapeIDColumn), q(TripsTable), d.AsText(RouteIDColumn), q(ShapeIDColumn))
	otherShapes := fmt.Sprintf("SELECT %s FROM %s WHERE %s <> ? AND %s IS NOT NULL",
		q(ShapeIDColumn), q(TripsTable), d.AsText(RouteIDColumn), q(ShapeIDColumn))

	result := &types.CascadeResult{}

	if opts.DeleteShapes {
		stmt := qb.Delete(q(ShapesTable)).
			Where(squirrel.Expr(q(ShapeIDColumn)+" IN ("+routeShapes+")", routeID)).
			Where(squirrel.Expr(q(ShapeIDColumn)+" NOT IN ("+otherShapes+")", routeID))
		affected, err := execBuilder(ctx, tx, stmt)
		if err != nil {
			return nil, fmt.Errorf("failed to delete shapes: %w", err)
		}
		result.ShapesDeleted = int(affected)
	}

	if opts.DeleteTrips {
		stmt := qb.Delete(q(StopTimesTable)).
			Where(squirrel.Expr(q(TripIDColumn)+" IN ("+routeTrips+")", routeID))
		affected, err := execBuilder(ctx, tx, stmt)
		if err != nil {
			return nil, fmt.Errorf("failed to delete stop times: %w", err)
		}
		result.StopTimesDeleted = int(affected)

		affected, err = execBuilder(ctx, tx, qb.Delete(q(TripsTable)).Where(d.KeyMatch(RouteIDColumn, routeID)))
		if err != nil {
			return nil, fmt.Errorf("failed to delete trips: %w", err)
		}
		result.TripsDeleted = int(affected)
	}

	if _, err := execBuilder(ctx, tx, d.Delete(RoutesTable, RouteIDColumn, routeID)); err != nil {
		return nil, fmt.Errorf("failed to delete route %s: %w", routeID, err)
	}
	return result, nil
}

func execBuilder(ctx context.Context, tx Execer, b squirrel.Sqlizer) (int64, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return 0, err
	}
	return tx.Exec(ctx, query, args...)
}
