package pathutil_test

import (
	"testing"

	"github.com/muffinresearch/arewedesigntokensyet/internal/pathutil"
	"github.com/stretchr/testify/assert"
)

// TestNormalize tests repo-relative normalization and the leave-alone fallback
func TestNormalize(t *testing.T) {
	assert.Equal(t, "src/a.css", pathutil.Normalize("/repo", "/repo/src/a.css"))
	assert.Equal(t, "a.css", pathutil.Normalize("/repo", "/repo/a.css"))
	assert.Equal(t, "/elsewhere/a.css", pathutil.Normalize("/repo", "/elsewhere/a.css"),
		"paths outside the root are left unchanged")
	assert.Equal(t, "/repo", pathutil.Normalize("/repo/src", "/repo"),
		"the root's own parent is outside the root")
	assert.Equal(t, "/repo/a.css", pathutil.Normalize("", "/repo/a.css"))
}
