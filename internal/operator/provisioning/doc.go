// Package provisioning creates and deletes the Jobs that make up a standby pool.
//
// The [Provisioner] turns a HotStandbyJob's job template plus pool bookkeeping
// (name, labels, controller owner reference) into Job API calls. Both
// operations are idempotent: creating a member that already exists and
// deleting a member that is already gone succeed without side effects.
// Every operation is reported to an [Observer].
package provisioning
