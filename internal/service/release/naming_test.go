package release

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/spm-release/internal/archive"
	"github.com/oshokin/spm-release/internal/domain/platform"
	domain "github.com/oshokin/spm-release/internal/domain/release"
)

// TestAssetName renders templates and appends the archive extension.
func TestAssetName(t *testing.T) {
	t.Parallel()

	vars := NameVars{
		Project: "sqlite-vec",
		Version: "0.1.0",
		Type:    platform.TypeLoadable,
		OS:      platform.MacOS,
		CPU:     platform.Aarch64,
	}

	tests := []struct {
		name     string
		template string
		kind     archive.Kind
		want     string
	}{
		{
			name:     "default",
			template: "$PROJECT-$VERSION-$OS-$CPU",
			kind:     archive.KindTarGz,
			want:     "sqlite-vec-0.1.0-macos-aarch64.tar.gz",
		},
		{
			name:     "braces and type",
			template: "${PROJECT}_v${VERSION}_${TYPE}_${OS}_${CPU}",
			kind:     archive.KindZip,
			want:     "sqlite-vec_v0.1.0_loadable_macos_aarch64.zip",
		},
		{
			name:     "literal",
			template: "bundle",
			kind:     archive.KindZip,
			want:     "bundle.zip",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := AssetName(tt.template, vars, tt.kind)
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

// TestAssetName_Errors rejects unknown placeholders and unusable names.
func TestAssetName_Errors(t *testing.T) {
	t.Parallel()

	vars := NameVars{Project: "foo", OS: platform.Linux, CPU: platform.X86_64}

	for _, template := range []string{"$PROJECT-$ARCH", "$PROJECT/$OS", "$VERSION"} {
		_, err := AssetName(template, vars, archive.KindTarGz)
		require.ErrorIs(t, err, domain.ErrConfiguration, template)
	}
}
