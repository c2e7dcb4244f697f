// Package authority talks to the permission authority, the service that owns
// per-user permission data.
//
// Client.Fetch performs
//
//	GET {baseURL}/permissions/users/{userID}/permissions
//
// and decodes the response into an rbac.PermissionSet. The wire document uses
// the keys grupos_acesso, permissoes_detalhadas, is_admin, id_perfil and
// nm_perfil (see Payload). Decoding is lenient per field: unknown groups,
// resources and actions are dropped with a warning and the rest of the
// document is kept.
//
// Errors are returned as is. Converting a failed fetch into the empty set is
// the permission cache's job, never this package's.
package authority
