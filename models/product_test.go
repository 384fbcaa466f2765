package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClone_IsIndependent(t *testing.T) {
	p := &Product{
		Title:   "Shop Template",
		Tags:    []string{"nextjs"},
		Secrets: []Secret{{Name: "Stripe Key", Value: "sk_test_123"}},
	}

	c := p.Clone()
	c.Tags[0] = "changed"
	c.Secrets[0].Value = ""

	assert.Equal(t, "nextjs", p.Tags[0])
	assert.Equal(t, "sk_test_123", p.Secrets[0].Value)
}

func TestClone_KeepsEmptyAndNilSlices(t *testing.T) {
	p := &Product{
		Tags:              []string{},
		GalleryImages:     []string{},
		DownloadableFiles: []DownloadableFile{},
		ExternalLinks:     []ExternalLink{},
		Secrets:           []Secret{},
	}

	c := p.Clone()
	assert.NotNil(t, c.Tags)
	assert.NotNil(t, c.Secrets)

	want, err := json.Marshal(p)
	require.NoError(t, err)
	got, err := json.Marshal(c)
	require.NoError(t, err)
	assert.JSONEq(t, string(want), string(got))
	assert.Contains(t, string(got), `"tags":[]`)

	assert.Nil(t, (&Product{}).Clone().Tags)
}
