package main

import (
	"fmt"

	"github.com/dukerupert/streek/internal/push"
)

type vapidKeysCmd struct{}

func (vapidKeysCmd) Run() error {
	pub, priv, err := push.GenerateVAPIDKeys()
	if err != nil {
		return err
	}
	fmt.Printf("STREEK_VAPID_PUBLIC_KEY=%s\nSTREEK_VAPID_PRIVATE_KEY=%s\n", pub, priv)
	return nil
}
