package mapping

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verustcode/rulemap/pkg/errors"
)

func TestParse(t *testing.T) {
	csvData := "caching,Cache Rules,https://example.com/cache\n" +
		"cpCode,Analytics,\n" +
		"\"quoted, key\",\"Equivalent, with comma\",\n"

	table, err := Parse(strings.NewReader(csvData))
	require.NoError(t, err)
	require.Len(t, table, 3)

	entry, ok := table.Lookup("caching")
	require.True(t, ok)
	assert.Equal(t, "Cache Rules", entry.Equivalent)
	assert.True(t, entry.HasLink())

	entry, ok = table.Lookup("cpCode")
	require.True(t, ok)
	assert.False(t, entry.HasLink())

	entry, ok = table.Lookup("quoted, key")
	require.True(t, ok)
	assert.Equal(t, "Equivalent, with comma", entry.Equivalent)

	_, ok = table.Lookup("missing")
	assert.False(t, ok)
}

func TestParse_LastRowWins(t *testing.T) {
	table, err := Parse(strings.NewReader("origin,First,\norigin,Second,https://b\n"))
	require.NoError(t, err)

	require.Len(t, table, 1)
	assert.Equal(t, Entry{Equivalent: "Second", Link: "https://b"}, table["origin"])
}

func TestParse_HeaderRowIsAnEntry(t *testing.T) {
	table, err := Parse(strings.NewReader("akamai,cloudflare,link\norigin,Origin Rules,\n"))
	require.NoError(t, err)

	assert.Equal(t, []string{"akamai", "origin"}, table.Keys())
}

func TestParse_ExtraColumnsIgnored(t *testing.T) {
	table, err := Parse(strings.NewReader("gzip,Compression,https://c,note,more\n"))
	require.NoError(t, err)
	assert.Equal(t, Entry{Equivalent: "Compression", Link: "https://c"}, table["gzip"])
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"short row", "caching,Cache Rules,\norigin,Origin\n"},
		{"single column", "caching\n"},
		{"unterminated quote swallows the row", "\"unterminated,a,b\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.input))
			require.Error(t, err)
			assert.True(t, errors.HasCode(err, errors.ErrCodeMappingParse))
		})
	}
}

func TestParse_StrayQuotesInCells(t *testing.T) {
	csvData := "caching,Use \"Cache Rules\",https://example.com/cache\n" +
		"origin,Origin \"Rules\" page,\n"

	table, err := Parse(strings.NewReader(csvData))
	require.NoError(t, err)
	assert.Equal(t, Entry{Equivalent: `Use "Cache Rules"`, Link: "https://example.com/cache"}, table["caching"])
	assert.Equal(t, `Origin "Rules" page`, table["origin"].Equivalent)
}

func TestParse_ShortRowReportsLine(t *testing.T) {
	_, err := Parse(strings.NewReader("a,b,c\nd,e,f\ng,h\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 3")
}

func TestParse_Empty(t *testing.T) {
	table, err := Parse(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, table)
}

func TestLoader_Load(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		w.Header().Set("Content-Type", "text/csv")
		_, _ = w.Write([]byte("caching,Cache Rules,https://example.com/cache\n"))
	}))
	defer server.Close()

	table, err := NewLoader(0).Load(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Equal(t, "Cache Rules", table["caching"].Equivalent)
}

func TestLoader_NonSuccessStatus(t *testing.T) {
	for _, status := range []int{http.StatusNotFound, http.StatusInternalServerError, http.StatusMovedPermanently} {
		t.Run(http.StatusText(status), func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if status == http.StatusMovedPermanently {
					// No Location header, so the client surfaces the 301 as-is
					w.WriteHeader(status)
					return
				}
				http.Error(w, "nope", status)
			}))
			defer server.Close()

			_, err := NewLoader(0).Load(context.Background(), server.URL)
			require.Error(t, err)
			assert.True(t, errors.HasCode(err, errors.ErrCodeMappingStatus))
		})
	}
}

func TestLoader_UnparseableBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html><body>Sign in</body></html>\n"))
	}))
	defer server.Close()

	_, err := NewLoader(0).Load(context.Background(), server.URL)
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeMappingParse))
}

func TestLoader_TransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	_, err := NewLoader(time.Second).Load(context.Background(), url)
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeMappingFetch))
}

func TestLoader_EmptyURL(t *testing.T) {
	_, err := NewLoaderWithClient(nil).Load(context.Background(), "")
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeConfigInvalid))
}

func TestLoader_ContextCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewLoader(0).Load(ctx, server.URL)
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeMappingFetch))
}
