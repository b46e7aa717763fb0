// Package authz is the enforcement boundary of the authorization core.
//
// Core concepts:
//
//   - Principal: a single authorization identity per request (System/User),
//     set via NewSystemContext, NewUserContext or WithPrincipal. Each
//     context carries at most one principal, enforced by set-once
//     semantics.
//
//   - ActorContext: the (user, library) evaluation input, holding the
//     role plus per-user custom grants and denials as read from one
//     staff membership row. All boolean checks are pure functions over
//     it.
//
//   - Bypass: controlled policy bypass via RunWithBypass for system
//     operations that must read rows before any actor is resolved
//     (e.g. authentication lookups). All bypasses are audited.
//
// Usage rules:
//
//  1. Route every permission question through HasPermission /
//     RequirePermission; never inspect membership rows at call sites.
//  2. Prefer RunWithBypass closures to limit bypass scope.
//  3. Bypass reasons must be stable strings for audit aggregation.
//  4. Background tasks must declare a System principal via
//     NewSystemContext.
package authz
