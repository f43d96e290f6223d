package platform

import (
	"crypto/md5"
	"fmt"
	"math/rand"
	"time"
)

const dsRandChars = "abcdefghijklmnopqrstuvwxyz0123456789"

// ds1 builds the header signature for plain app requests: md5 over the
// platform salt, a unix timestamp and a 6-char random string.
func ds1(salt string) string {
	t := time.Now().Unix()
	r := make([]byte, 6)
	for i := range r {
		r[i] = dsRandChars[rand.Intn(len(dsRandChars))]
	}
	sum := md5.Sum([]byte(fmt.Sprintf("salt=%s&t=%d&r=%s", salt, t, r)))
	return fmt.Sprintf("%d,%s,%x", t, r, sum)
}

// ds2 builds the signature for requests that carry a body and/or query
// string; the platform expects the numeric random in the 100000..200000
// range and both payloads baked into the digest.
func ds2(salt, body, query string) string {
	t := time.Now().Unix()
	r := 100000 + rand.Intn(100001)
	sum := md5.Sum([]byte(fmt.Sprintf("salt=%s&t=%d&r=%d&b=%s&q=%s", salt, t, r, body, query)))
	return fmt.Sprintf("%d,%d,%x", t, r, sum)
}
