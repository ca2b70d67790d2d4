package service

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"velodrive/internal/domain"
)

func TestGenerateUniqueFilename(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"no counter", "photo.png", "photo(1).png"},
		{"existing counter", "photo(1).png", "photo(2).png"},
		{"counter grows", "photo(9).png", "photo(10).png"},
		{"counter inside name stays", "report(2023).v2.pdf", "report(2023).v2(1).pdf"},
		{"multiple dots", "archive.tar.gz", "archive.tar(1).gz"},
		{"no extension", "README", "README(1)"},
		{"parens without digits", "photo().png", "photo()(1).png"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, GenerateUniqueFilename(tc.in))
		})
	}
}

func TestGenerateUniqueFilenameChain(t *testing.T) {
	name := "doc.txt"
	for i := 1; i <= 12; i++ {
		name = GenerateUniqueFilename(name)
	}
	require.Equal(t, "doc(12).txt", name)
}

func TestExtractExtension(t *testing.T) {
	ext, err := ExtractExtension("photo.png")
	require.NoError(t, err)
	require.Equal(t, "png", ext)

	ext, err = ExtractExtension("archive.tar.gz")
	require.NoError(t, err)
	require.Equal(t, "gz", ext)

	_, err = ExtractExtension("README")
	require.True(t, errors.Is(err, domain.ErrBadRequest))

	_, err = ExtractExtension("trailing.")
	require.True(t, errors.Is(err, domain.ErrBadRequest))
}
