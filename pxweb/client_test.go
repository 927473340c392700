package pxweb

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/require"
)

const tablePath = "StatFin/khi/statfin_khi_pxt_11xc.px"

func Test_Client_TableMeta(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, "/"+tablePath, r.URL.Path)

		io.WriteString(w, `{
			"title": "Consumer price index",
			"variables": [
				{"code": "Vuosi", "text": "Year", "values": ["2015", "2016"], "valueTexts": ["2015", "2016"], "time": true},
				{"code": "Tiedot", "text": "Information", "values": ["indeksipisteluku"], "valueTexts": ["Point figure"]}
			]
		}`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	meta, err := c.TableMeta(context.Background(), tablePath)
	require.NoError(t, err)
	require.Equal(t, "Consumer price index", meta.Title)

	years, ok := meta.Variable("Vuosi")
	require.True(t, ok)
	require.Equal(t, []string{"2015", "2016"}, years.Values)
	require.True(t, years.Time)

	_, ok = meta.Variable("Alue")
	require.False(t, ok)
}

func Test_Client_Table(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var q Query
		require.NoError(t, json.NewDecoder(r.Body).Decode(&q))
		require.Equal(t, FormatJSONStat2, q.Response.Format)
		require.Len(t, q.Query, 2)
		require.Equal(t, "Vuosi", q.Query[0].Code)
		require.Equal(t, FilterItem, q.Query[0].Selection.Filter)
		require.Equal(t, FilterAll, q.Query[1].Selection.Filter)

		io.WriteString(w, `{
			"label": "Consumer price index",
			"id": ["Vuosi"],
			"size": [2],
			"dimension": {
				"Vuosi": {
					"label": "Year",
					"category": {
						"index": {"2015": 0, "2016": 1},
						"label": {"2015": "2015", "2016": "2016"}
					}
				}
			},
			"value": [100.0, null]
		}`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	q := NewQuery().
		Select("Vuosi", "2015", "2016").
		SelectAll("Alue")

	table, err := c.Table(context.Background(), tablePath, q)
	require.NoError(t, err)
	require.Equal(t, []string{"Vuosi"}, table.ID)
	require.Equal(t, []int{2}, table.Size)
	require.Len(t, table.Value, 2)
	require.NotNil(t, table.Value[0])
	require.Equal(t, 100.0, *table.Value[0])
	require.Nil(t, table.Value[1])
}

func Test_Client_ErrorStatus(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		io.WriteString(w, "The request is invalid")
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	_, err := c.TableMeta(context.Background(), tablePath)
	require.Error(t, err)
	require.Contains(t, err.Error(), "400")
	require.Contains(t, err.Error(), "The request is invalid")
}
