// Package api exposes the farm management operation surface over HTTP.
//
// Every privileged route is annotated with the permission set it
// requires; the annotation is enforced by the RBAC middleware before the
// handler body runs, so handlers never re-check permissions. Routes
// without an annotation are open to any authenticated caller, and the
// invitation verify probe is fully public.
package api
