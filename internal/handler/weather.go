package handler

import (
	"math"
	"math/rand/v2"
	"net/http"

	"github.com/labstack/echo/v4"
)

// Weather handles GET /weather and returns a single randomly simulated
// reading.  It exists for demos and client development against a server
// with no live stations; nothing is persisted.
func Weather(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"temperature":    round1(rand.Float64()*80 - 30), // -30 .. 50 °C
		"pressure":       980 + rand.IntN(71),            // 980 .. 1050 hPa
		"humidity":       rand.IntN(101),                 // 0 .. 100 %
		"wind_speed":     round1(rand.Float64() * 150),
		"wind_direction": round1(rand.Float64() * 359),
		"uv_index":       round1(rand.Float64() * 5),
		"rain_status":    rand.IntN(2) == 1,
	})
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
