// README: Courier directory backed by Redis GEO and hashes; read-only for dispatch.
package courier

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"tavolo/internal/types"
)

const (
	storeGeoKeyPrefix    = "dispatch:store:%s:couriers"
	courierHashKeyPrefix = "dispatch:courier:%s"
	// TTL for courier state; a courier that stops heartbeating drops out
	// of the directory within a day.
	courierKeyTTL = 24 * time.Hour
)

// Directory holds live courier state. Writes come only from the couriers'
// own clients (heartbeats); the dispatch engine reads and never mutates.
type Directory struct {
	redis *redis.Client
}

func NewDirectory(redis *redis.Client) *Directory {
	return &Directory{redis: redis}
}

// Heartbeat upserts a courier's self-reported state: GEO position for
// radius queries plus a hash with status, battery and load.
func (d *Directory) Heartbeat(ctx context.Context, c Courier) error {
	pipe := d.redis.Pipeline()
	pipe.GeoAdd(ctx, storeGeoKey(c.StoreID), &redis.GeoLocation{
		Name:      string(c.ID),
		Longitude: c.Location.Lng,
		Latitude:  c.Location.Lat,
	})
	hashKey := courierHashKey(c.ID)
	pipe.HSet(ctx, hashKey, map[string]interface{}{
		"store_id":      string(c.StoreID),
		"lat":           c.Location.Lat,
		"lng":           c.Location.Lng,
		"status":        string(c.Status),
		"battery":       c.BatteryLevel,
		"active_orders": c.ActiveOrders,
		"updated_at":    c.LocationUpdatedAt.UTC().Format(time.RFC3339),
	})
	pipe.Expire(ctx, hashKey, courierKeyTTL)
	pipe.Expire(ctx, storeGeoKey(c.StoreID), courierKeyTTL)
	_, err := pipe.Exec(ctx)
	return err
}

// Remove drops a courier from its store's directory (sign-off).
func (d *Directory) Remove(ctx context.Context, storeID, courierID types.ID) error {
	pipe := d.redis.Pipeline()
	pipe.ZRem(ctx, storeGeoKey(storeID), string(courierID))
	pipe.Del(ctx, courierHashKey(courierID))
	_, err := pipe.Exec(ctx)
	return err
}

// ListByStore returns every courier currently registered against a store.
func (d *Directory) ListByStore(ctx context.Context, storeID types.ID) ([]Courier, error) {
	ids, err := d.redis.ZRange(ctx, storeGeoKey(storeID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("list couriers for store %s: %w", storeID, err)
	}
	return d.hydrate(ctx, ids)
}

// Nearby returns couriers within radiusKm of the point, nearest first.
func (d *Directory) Nearby(ctx context.Context, storeID types.ID, p types.Point, radiusKm float64) ([]Courier, error) {
	ids, err := d.redis.GeoSearch(ctx, storeGeoKey(storeID), &redis.GeoSearchQuery{
		Longitude:  p.Lng,
		Latitude:   p.Lat,
		Radius:     radiusKm,
		RadiusUnit: "km",
		Sort:       "ASC",
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("nearby couriers for store %s: %w", storeID, err)
	}
	return d.hydrate(ctx, ids)
}

func (d *Directory) hydrate(ctx context.Context, ids []string) ([]Courier, error) {
	couriers := make([]Courier, 0, len(ids))
	for _, id := range ids {
		fields, err := d.redis.HGetAll(ctx, courierHashKey(types.ID(id))).Result()
		if err != nil {
			return nil, err
		}
		if len(fields) == 0 {
			// GEO entry outlived its hash; skip rather than fabricate state.
			continue
		}
		couriers = append(couriers, courierFromHash(types.ID(id), fields))
	}
	return couriers, nil
}

func courierFromHash(id types.ID, fields map[string]string) Courier {
	lat, _ := strconv.ParseFloat(fields["lat"], 64)
	lng, _ := strconv.ParseFloat(fields["lng"], 64)
	battery, _ := strconv.Atoi(fields["battery"])
	active, _ := strconv.Atoi(fields["active_orders"])
	updatedAt, _ := time.Parse(time.RFC3339, fields["updated_at"])
	return Courier{
		ID:                id,
		StoreID:           types.ID(fields["store_id"]),
		Location:          types.Point{Lat: lat, Lng: lng},
		LocationUpdatedAt: updatedAt,
		ActiveOrders:      active,
		BatteryLevel:      battery,
		Status:            Status(fields["status"]),
	}
}

func storeGeoKey(storeID types.ID) string {
	return fmt.Sprintf(storeGeoKeyPrefix, string(storeID))
}

func courierHashKey(id types.ID) string {
	return fmt.Sprintf(courierHashKeyPrefix, string(id))
}
