package pdfio

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractBytes_NotAPDF(t *testing.T) {
	_, err := ExtractBytes([]byte("this is not a pdf"))
	assert.Error(t, err)
}

func TestExtractBytes_Empty(t *testing.T) {
	_, err := ExtractBytes(nil)
	assert.Error(t, err)
}

func TestExtractFile_Missing(t *testing.T) {
	_, err := ExtractFile("testdata/absent.pdf")
	assert.Error(t, err)
}
