package config

// DefaultConfiguration is the configuration that will be in effect if no configuration is loaded from any of the expected locations
const DefaultConfiguration = `[rdbms]
dialect=sqlite3
connection-url=lead-router.sqlite3?_foreign_keys=on
connxn-max-idle-time-seconds=0
connxn-max-lifetime-seconds=0
max-idle-connxns=30
max-open-connxns=100
[http]
listener=:8080
read-timeout=240
write-timeout=240
[log]
filename=
log-level=debug
max-file-size-in-mb=200
max-backups=3
max-age-in-days=28
compress-backups=true
[router]
max-lead-queue-size=10000
max-workers=50
timezone=UTC
roulette-queue-id=
queue-cache-ttl-seconds=30
actor-header-name=X-Lead-Router-Actor
[redistribution]
throughput-per-minute=60
job-runner-interval-ms=5000
job-batch-size=10
max-import-quantity=5000
[scheduler]
held-retry-interval-ms=30000
held-retry-batch-size=100
[prune]
enabled=false
export-path=
export-node-name=
audit-retention-days=90
remote-export-url=
remote-file-prefix=
max-archive-file-size-in-mb=100
[initial-queues]
sample-queue=Sample Queue
[queue.sample-queue]
priority=1
enabled=true
rules=
members=sample-member:Sample Member
escalation-target=none
`
