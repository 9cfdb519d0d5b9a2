package images

import (
	"context"
	"log"
	"sync"
	"time"

	"backend/internal/models"
)

// Resolve uploads every item image that is not already a hosted URL and swaps
// in the returned secure URL. Uploads are independent and run concurrently,
// each under its own timeout. A failed upload is logged and the item keeps its
// original reference; image hosting is best-effort and never blocks an order.
func Resolve(ctx context.Context, up Uploader, items []models.OrderItem, folder string, timeout time.Duration) {
	var wg sync.WaitGroup
	for i := range items {
		if items[i].Image == "" || IsRemoteURL(items[i].Image) {
			continue
		}

		wg.Add(1)
		go func(item *models.OrderItem) {
			defer wg.Done()

			uploadCtx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()

			url, err := up.Upload(uploadCtx, item.Image, folder)
			if err != nil {
				log.Println("[ORDER] [ERROR] image upload failed:", err)
				return
			}
			item.Image = url
		}(&items[i])
	}
	wg.Wait()
}
