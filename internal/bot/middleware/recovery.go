package middleware

import (
	"runtime/debug"

	log "github.com/sirupsen/logrus"
)

// Recover перехватывает панику в обработчике обновления.
// Одно «плохое» обновление не должно ронять весь бот.
func RecoverFromPanic() {
	if r := recover(); r != nil {
		log.WithFields(log.Fields{
			"panic": r,
			"stack": string(debug.Stack()),
		}).Error("Паника в обработчике обновления")
	}
}
