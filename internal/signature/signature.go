// Package signature implements the merchant request signing scheme:
// sorted key=value pairs joined with '&', followed by "&key=<secret>",
// digested and rendered as uppercase hex.
package signature

import (
	"crypto/md5"
	"crypto/subtle"
	"encoding/hex"
	"hash"
	"sort"
	"strings"
)

// FieldName is never part of the signed string.
const FieldName = "signature"

type Codec struct {
	secret  string
	newHash func() hash.Hash
}

type Option func(*Codec)

// WithHash swaps the digest. Merchants integrated against MD5 need the default.
func WithHash(newHash func() hash.Hash) Option {
	return func(c *Codec) {
		c.newHash = newHash
	}
}

func NewCodec(secret string, opts ...Option) *Codec {
	c := &Codec{
		secret:  secret,
		newHash: md5.New,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Codec) Sign(params map[string]string) string {
	h := c.newHash()
	h.Write([]byte(CanonicalString(params, c.secret)))
	return strings.ToUpper(hex.EncodeToString(h.Sum(nil)))
}

func (c *Codec) Verify(params map[string]string, signature string) bool {
	expected := c.Sign(params)
	return subtle.ConstantTimeCompare([]byte(signature), []byte(expected)) == 1
}

// CanonicalString builds the string that gets digested.
func CanonicalString(params map[string]string, secret string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		if k == FieldName {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(params[k])
	}
	b.WriteString("&key=")
	b.WriteString(secret)
	return b.String()
}

// Sign signs params with the default MD5 digest.
func Sign(params map[string]string, secret string) string {
	return NewCodec(secret).Sign(params)
}

// Verify checks signature against params with the default MD5 digest.
func Verify(params map[string]string, signature, secret string) bool {
	return NewCodec(secret).Verify(params, signature)
}
