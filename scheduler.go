package darkroom

import (
	"time"

	"github.com/robfig/cron/v3"
)

// startScheduler runs the scheduled-publish job once a minute: scheduled
// posts whose publish time has passed become published.
func (a *App) startScheduler() *cron.Cron {
	c := cron.New()
	_, err := c.AddFunc("* * * * *", func() {
		now := time.Now().UTC().Format(time.RFC3339)
		n, err := a.Store.PublishDue(now)
		if err != nil {
			a.Echo.Logger.Errorf("scheduled publish: %v", err)
			return
		}
		if n > 0 {
			a.Echo.Logger.Infof("published %d scheduled post(s)", n)
			a.Cache.Invalidate()
		}
	})
	if err != nil {
		a.Echo.Logger.Errorf("register scheduled publish job: %v", err)
	}
	c.Start()
	return c
}
