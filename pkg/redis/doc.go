// Package redis connects to Redis with go-redis and shares permission set
// snapshots between service instances.
//
// Connect retries the initial ping according to Config. Healthcheck returns a
// probe for readiness endpoints. PermissionStore implements the shared store
// consulted by the permission cache:
//
//	client, err := redis.Connect(ctx, cfg.Redis)
//	if err != nil {
//		return err
//	}
//	store := redis.NewPermissionStore(client, redis.WithSnapshotTTL(5*time.Minute))
//	perms := permcache.New(authorityClient, permcache.WithStore(store))
//
// Snapshots are JSON documents of rbac.Snapshot stored under
// "<prefix><userID>" with a TTL, so instances that missed an invalidation
// converge once the key expires.
package redis
