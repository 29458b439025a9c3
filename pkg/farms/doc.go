// Package farms implements the tenant side of the system: farm
// lifecycle, membership, and invitations.
//
// A farm is the tenancy boundary. Every membership, invitation, and
// permission binding hangs off a farm, and deleting a farm removes all
// of its dependent records in one transaction, children first, so no
// orphans survive a partial failure.
//
// Membership rules enforced here:
//
//   - An owner may hold at most MaxFarmsPerOwner farms.
//   - Creating a farm atomically makes the creator its owner member
//     and seeds the OWNER role with every catalog permission for that
//     farm.
//   - A member cannot remove themselves or change their own role
//     through the admin operations; leaving is a separate operation
//     that the owner is barred from.
//
// Invitations are rows first, tokens second. The signed token carries
// the same facts as the row and lets the accept endpoint reject
// garbage cheaply, but expiry and validity are always decided against
// the database row. Accepted invitations are deleted, not flagged, so
// a second accept of the same token reads as not found.
package farms
