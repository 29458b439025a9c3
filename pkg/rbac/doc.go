// Package rbac implements tenant-scoped role-based access control.
//
// The permission catalog and the role catalog are global, immutable
// reference data. What varies per tenant (farm) is the binding table: a
// (role, permission, farm) grant record. The same role name can carry
// different permission sets in different farms, and a binding in one
// farm never changes behavior in another.
//
// The Resolver composes the membership lookup (user, farm) -> role with
// the binding lookup (role, farm) -> permissions and decides allow/deny
// for a required-permission set. It runs once per privileged request,
// before the guarded handler body, and its result is never cached across
// requests: bindings can change between calls.
//
// The permission middleware is the declarative annotation surface: each
// guarded route is registered with the permission set it requires, and
// routes registered without one are public to any authenticated caller.
package rbac
