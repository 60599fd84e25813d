package logging

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetLevel(t *testing.T) {
	assert.Equal(t, log.DebugLevel, GetLevel("DEBUG"))
	assert.Equal(t, log.WarnLevel, GetLevel("warn"))
	assert.Equal(t, log.InfoLevel, GetLevel("nonsense"))
}

func TestGinLogger(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var buf bytes.Buffer
	log.SetOutput(&buf)
	log.SetLevel(log.DebugLevel)
	t.Cleanup(func() {
		log.SetOutput(os.Stderr)
		log.SetLevel(log.InfoLevel)
	})

	router := gin.New()
	router.Use(GinLogger())
	router.GET("/missing", func(c *gin.Context) { c.Status(http.StatusNotFound) })

	w := httptest.NewRecorder()
	req, err := http.NewRequest(http.MethodGet, "/missing", nil)
	require.NoError(t, err)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, buf.String(), "status=404")
	assert.Contains(t, buf.String(), "path=/missing")
}
