// utils/firebase.go
package utils

import (
	"brandconnect/config"
	"context"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"
)

// FirebaseInit builds the FCM client. Push is optional: without credentials
// it returns nil and in-app notifications are stored without a push.
func FirebaseInit(ctx context.Context) (*messaging.Client, error) {
	if config.AppConfig.FirebaseCredentials == "" {
		GetLogger().Sugar().Info("firebase: no credentials configured, push disabled")
		return nil, nil
	}
	opt := option.WithCredentialsFile(config.AppConfig.FirebaseCredentials)

	app, err := firebase.NewApp(ctx, nil, opt)
	if err != nil {
		return nil, err
	}
	return app.Messaging(ctx)
}
