package handler_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/c-playground/internal/handler"
)

func TestHandleAnalyze(t *testing.T) {
	h := handler.NewAnalyzeHandler(testLogger())

	t.Run("reports structure and explanation", func(t *testing.T) {
		body, _ := json.Marshal(map[string]string{
			"source": "#include <stdio.h>\nint main(void) {\n    int x = 1;\n    return 0;\n}\n",
		})
		rr := postJSON(t, h.HandleAnalyze, "/api/analyze", string(body))

		assert.Equal(t, http.StatusOK, rr.Code)

		var res struct {
			Lines       int      `json:"lines"`
			Includes    []string `json:"includes"`
			Explanation string   `json:"explanation"`
		}
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&res))
		assert.Contains(t, res.Includes, "stdio.h")
		assert.Greater(t, res.Lines, 0)
		assert.NotEmpty(t, res.Explanation)
	})

	t.Run("empty source is a 400", func(t *testing.T) {
		rr := postJSON(t, h.HandleAnalyze, "/api/analyze", `{"source":""}`)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("malformed JSON is a 400", func(t *testing.T) {
		rr := postJSON(t, h.HandleAnalyze, "/api/analyze", `{`)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}
