// Copyright (c) 2026 Verbum. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package middleware

var RateLimitWith = rateLimitWith
