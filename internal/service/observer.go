package service

import "time"

type noopObserver struct{}

func (noopObserver) CredentialIssued(time.Duration, error) {}

func (noopObserver) CredentialCacheLookup(bool) {}

func (noopObserver) URLSigned(error) {}

func (noopObserver) ObjectUploaded(string, int64, time.Duration, error) {}
