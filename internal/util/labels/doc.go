// Package labels provides the label keys and builders that tie pool member
// Jobs and Pods back to the HotStandbyJob that owns them.
//
// All keys use the hsj.paia.tech domain prefix, except the well-known
// app.kubernetes.io/managed-by key.
package labels
