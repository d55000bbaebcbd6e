package orders

import (
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"time"
)

// orderNumberRandomSpace bounds the random suffix. Four base36 digits of
// entropy keeps collisions unlikely within one millisecond; the unique
// index on order_number catches the rest.
const orderNumberRandomSpace = 36 * 36 * 36 * 36

// GenerateOrderNumber returns a human readable order reference such as
// DD-1990F2A3C41-00FF. The middle segment is the millisecond timestamp in
// uppercase hex, so numbers sort roughly by creation time.
func GenerateOrderNumber(prefix string) string {
	if prefix == "" {
		prefix = "DD"
	}
	timestamp := strings.ToUpper(strconv.FormatInt(time.Now().UnixMilli(), 16))
	suffix := strings.ToUpper(fmt.Sprintf("%04x", rand.Intn(orderNumberRandomSpace)))
	return fmt.Sprintf("%s-%s-%s", prefix, timestamp, suffix)
}
