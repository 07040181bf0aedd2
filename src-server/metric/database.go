package metric

import (
	"context"
	"time"

	"bdayinvite/src-server/utils"
)

func databaseEmptyRead(as *utils.AppState) (float64, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	latency, err := as.Store.Probe(ctx)
	if err != nil {
		return 0, err
	}
	return float64(latency.Microseconds()), nil
}
