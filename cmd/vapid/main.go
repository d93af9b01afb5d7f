// Command vapid generates a VAPID key pair for web push.
package main

import (
	"fmt"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/sirupsen/logrus"
)

func main() {
	privateKey, publicKey, err := webpush.GenerateVAPIDKeys()
	if err != nil {
		logrus.WithError(err).Fatal("failed to generate VAPID keys")
	}

	fmt.Println("Add these to your .env file:")
	fmt.Println("VAPID_PUBLIC_KEY=" + publicKey)
	fmt.Println("VAPID_PRIVATE_KEY=" + privateKey)
	fmt.Println("VAPID_SUBSCRIBER=mailto:you@example.com")
}
