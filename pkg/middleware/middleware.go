package middleware

import "github.com/partstream/partstream/pkg/upload"

// Middleware decorates an upload.Handler.
type Middleware func(upload.Handler) upload.Handler
