// Package storage fetches stems addressed as s3://bucket/key from an
// S3-compatible object store using the AWS SDK.
package storage
