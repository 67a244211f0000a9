package assets

import (
	_ "embed"
)

// IndexTemplate is the listing page rendered by the web server.
//
//go:embed templates/index.html
var IndexTemplate string
