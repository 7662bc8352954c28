// Package models defines domain entities for the accountd persistence service.
//
//   - [User] : account record with email identity and billing-provider linkage
//   - [BillingLink] : the set of billing fields written onto a user row
//
// The package holds data only; persistence lives in the repositories package
// and treats a nil *User as "absent", never as an error.
package models
