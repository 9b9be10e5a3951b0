package mocks

//go:generate mockery --name EventStore --srcpkg github.com/devstats-lab/devstats/internal/core/storage --output ./storage --outpkg storagemocks --with-expecter
//go:generate mockery --name DeviceStore --srcpkg github.com/devstats-lab/devstats/internal/core/storage --output ./storage --outpkg storagemocks --with-expecter
