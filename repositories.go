package main

import "github.com/newscred/lead-router/storage"

func getAppRepository(dataAccessor storage.DataAccessor) storage.AppRepository {
	return dataAccessor.GetAppRepository()
}

func getQueueRepository(dataAccessor storage.DataAccessor) storage.QueueRepository {
	return dataAccessor.GetQueueRepository()
}

func getPoolLeadRepository(dataAccessor storage.DataAccessor) storage.PoolLeadRepository {
	return dataAccessor.GetPoolLeadRepository()
}

func getAuditRepository(dataAccessor storage.DataAccessor) storage.AuditRepository {
	return dataAccessor.GetAuditRepository()
}

func getRedistributionJobRepository(dataAccessor storage.DataAccessor) storage.RedistributionJobRepository {
	return dataAccessor.GetRedistributionJobRepository()
}

func getLockRepository(dataAccessor storage.DataAccessor) storage.LockRepository {
	return dataAccessor.GetLockRepository()
}
