// Copyright 2026 pmhc Project Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package dataset

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadBindingData(t *testing.T) {
	path := writeTempFile(t, "binding.csv",
		"mhc,peptide,peptide_length,meas\n"+
			"HLA-A0201,AAACCCDDD,9,100\n"+
			"HLA-A0201,CCCDDDEEE,9,2000\n"+
			"HLA-A0201,AAACCCDDD,9,999\n"+ // duplicate, first wins
			"HLA-B0702,AAACCCDDD,9,50\n"+
			"HLA-B0702,AAAA,4,50\n"+ // wrong length
			"HLA-B0702,AAACCCDDX,9,50\n") // unknown residue
	data, err := LoadBindingData(path, 9, 5000)
	require.NoError(t, err)
	require.Len(t, data, 2)
	a0201 := data["HLA-A0201"]
	require.NotNil(t, a0201)
	assert.Equal(t, []string{"AAACCCDDD", "CCCDDDEEE"}, a0201.Peptides)
	assert.Equal(t, []float32{100, 2000}, a0201.IC50)
	b0702 := data["HLA-B0702"]
	require.NotNil(t, b0702)
	assert.Equal(t, 1, b0702.Count())
}

func TestLoadBindingDataTabSeparated(t *testing.T) {
	path := writeTempFile(t, "binding.txt",
		"species\tmhc\tpeptide_length\tsequence\tmeas\n"+
			"human\tHLA-A0201\t9\tAAACCCDDD\t100\n")
	data, err := LoadBindingData(path, 9, 5000)
	require.NoError(t, err)
	require.Len(t, data, 1)
	assert.Equal(t, []string{"AAACCCDDD"}, data["HLA-A0201"].Peptides)
}

func TestLoadBindingDataMissingColumn(t *testing.T) {
	path := writeTempFile(t, "binding.csv", "mhc,peptide\nHLA-A0201,AAACCCDDD\n")
	_, err := LoadBindingData(path, 9, 5000)
	assert.Error(t, err)
}

func TestCache(t *testing.T) {
	path := writeTempFile(t, "binding.csv",
		"mhc,peptide,peptide_length,meas\n"+
			"HLA-A0201,AAACCCDDD,9,100\n")
	cache := NewCache(path, 9)
	first, err := cache.Get(5000)
	require.NoError(t, err)
	// same cutoff is served from the cache: the file is gone but Get succeeds
	require.NoError(t, os.Remove(path))
	second, err := cache.Get(5000)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	// a new cutoff reloads, which now fails
	_, err = cache.Get(50000)
	assert.Error(t, err)
}
