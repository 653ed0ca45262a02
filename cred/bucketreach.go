package cred

import "github.com/asv/lox/group"

// Attribute indices for the BucketReachability credential type: date,
// bucket (2 attrs). The issuer mints one of these per reachable bucket
// every day; level_up and issue_invite require showing a same-day
// instance for the bucket being claimed.
const (
	BucketReachDate = iota + 1
	BucketReachBucket
)

// BucketReachNumAttrs is the BucketReachability credential's attribute
// count.
const BucketReachNumAttrs = 2

// BucketReachAttrs packs a BucketReachability credential's cleartext
// attributes.
type BucketReachAttrs struct {
	Date   *group.Scalar
	Bucket *group.Scalar
}

// Map returns the slot-indexed representation.
func (a BucketReachAttrs) Map() map[int]*group.Scalar {
	return map[int]*group.Scalar{
		BucketReachDate:   a.Date,
		BucketReachBucket: a.Bucket,
	}
}

// Slice returns the attribute values in slot order.
func (a BucketReachAttrs) Slice() []*group.Scalar {
	return []*group.Scalar{a.Date, a.Bucket}
}
