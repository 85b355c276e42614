package handlers

import (
	_ "embed"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const docsMaxAge = 10 * time.Minute

//go:embed openapi.yaml
var openAPIDoc []byte

var openAPIETag = buildETag(openAPIDoc)

// The UI is loaded from a CDN and pointed at the embedded document.
const swaggerUIPage = `<!doctype html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width,initial-scale=1">
  <title>WebTwist API Docs</title>
  <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css">
</head>
<body style="margin:0">
  <div id="docs"></div>
  <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
  <script>
    SwaggerUIBundle({
      url: "/docs/openapi.yaml",
      dom_id: "#docs",
      deepLinking: true,
      persistAuthorization: true,
      tryItOutEnabled: true
    });
  </script>
</body>
</html>`

func SwaggerUI(ctx *gin.Context) {
	ctx.Data(http.StatusOK, "text/html; charset=utf-8", []byte(swaggerUIPage))
}

func OpenAPISpec(ctx *gin.Context) {
	respondBytesWithETag(ctx, http.StatusOK, "application/yaml; charset=utf-8", openAPIDoc, openAPIETag, docsMaxAge)
}
